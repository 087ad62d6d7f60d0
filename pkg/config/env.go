package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// processDefaults applies `default` tags to zero fields. Tag values are
// yaml, so durations ("30s") and lists ("[1, 2]") work.
func processDefaults(cfg interface{}) error {
	v := reflect.Indirect(reflect.ValueOf(cfg))
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("invalid config %T, should be struct", cfg)
	}

	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		fieldStruct, field := typ.Field(i), v.Field(i)
		if !field.CanAddr() || !field.CanInterface() {
			continue
		}

		if value := fieldStruct.Tag.Get("default"); value != "" && field.IsZero() {
			if err := setValue(field, value); err != nil {
				return fmt.Errorf("default of %s: %w", fieldStruct.Name, err)
			}
		}

		for field.Kind() == reflect.Ptr && !field.IsNil() {
			field = field.Elem()
		}
		if field.Kind() == reflect.Struct {
			if err := processDefaults(field.Addr().Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

// envNames lists the variables consulted for a field: the `env` tag, or
// the field path joined with "_" as written and upper-cased.
func envNames(fieldStruct reflect.StructField, prefixes []string) []string {
	if name := fieldStruct.Tag.Get("env"); name != "" {
		return strings.Split(name, ",")
	}
	path := strings.Join(append(append([]string(nil), prefixes...), fieldStruct.Name), "_")
	return []string{path, strings.ToUpper(path)}
}

func fieldPrefix(prefixes []string, fieldStruct reflect.StructField) []string {
	if fieldStruct.Anonymous && fieldStruct.Tag.Get("anonymous") == "true" {
		return prefixes
	}
	return append(append([]string(nil), prefixes...), fieldStruct.Name)
}

// processTags reads environment overrides and enforces `required`.
func (c *Config) processTags(cfg interface{}, prefixes ...string) error {
	v := reflect.Indirect(reflect.ValueOf(cfg))
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		fieldStruct, field := typ.Field(i), v.Field(i)
		if !field.CanAddr() || !field.CanInterface() {
			continue
		}

		for _, name := range envNames(fieldStruct, prefixes) {
			value, ok := os.LookupEnv(name)
			if !ok || value == "" {
				continue
			}
			c.Logger.Debug("configuration from env", zap.String("field", fieldStruct.Name), zap.String("env", name))
			if err := setValue(field, value); err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}
			break
		}

		if fieldStruct.Tag.Get("required") == "true" && field.IsZero() {
			return fmt.Errorf("%s is required, but blank", fieldStruct.Name)
		}

		for field.Kind() == reflect.Ptr && !field.IsNil() {
			field = field.Elem()
		}
		if field.Kind() == reflect.Struct {
			if err := c.processTags(field.Addr().Interface(), fieldPrefix(prefixes, fieldStruct)...); err != nil {
				return err
			}
		}
	}
	return nil
}

// setValue parses a textual value into field. Strings are taken as is,
// booleans accept the usual spellings, lists of scalars may be written
// comma separated; everything else goes through yaml.
func setValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
		return nil
	case reflect.Bool:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "", "0", "f", "false", "no", "off":
			field.SetBool(false)
		default:
			field.SetBool(true)
		}
		return nil
	case reflect.Slice:
		if elem := field.Type().Elem().Kind(); elem != reflect.Struct && !strings.HasPrefix(strings.TrimSpace(value), "[") {
			value = "[" + value + "]"
		}
	}
	return yaml.Unmarshal([]byte(value), field.Addr().Interface())
}
