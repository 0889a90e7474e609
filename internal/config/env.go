package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// EnvPrefix namespaces the environment overrides. AGORA_DB_HOST wins over DB_HOST.
const EnvPrefix = "AGORA_"

// lookupEnv reads the prefixed variable first, then the bare one
func lookupEnv(name string) (string, string, bool) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		return EnvPrefix + name, v, true
	}
	v, ok := os.LookupEnv(name)
	return name, v, ok
}

// applyEnv overlays every `env` tagged field of the config tree with its
// environment variable, reporting all malformed values at once.
func applyEnv(cfg *Config) error {
	return applyEnvTo(reflect.ValueOf(cfg).Elem())
}

func applyEnvTo(v reflect.Value) error {
	var errs error
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() == reflect.Struct {
			errs = errors.Join(errs, applyEnvTo(field))
			continue
		}

		tag := t.Field(i).Tag.Get("env")
		if tag == "" || !field.CanSet() {
			continue
		}
		name, raw, ok := lookupEnv(tag)
		if !ok {
			continue
		}
		if err := assign(field, strings.TrimSpace(raw)); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errs
}

func assign(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("want a boolean, got %q", raw)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("want an integer, got %q", raw)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("want a number, got %q", raw)
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}
