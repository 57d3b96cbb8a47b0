package config

import "fmt"

func errRequired(field string) error {
	return fmt.Errorf("config: %s is required", field)
}

func errRange(field string, value int) error {
	return fmt.Errorf("config: %s has invalid value %d", field, value)
}

func errOrder(before, after string) error {
	return fmt.Errorf("config: %s must be strictly before %s", before, after)
}
