package config

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
)

var ErrConfigNotPointer = errors.New("config must be a pointer to a struct")

// LogConfig writes cfg as a single log line. String fields tagged
// masked:"true" are masked; embedded structs are logged as nested maps.
func LogConfig(logger *zap.Logger, cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return ErrConfigNotPointer
	}
	v = v.Elem()
	logger.Info("config", zap.Any(v.Type().Name(), maskFields(v)))
	return nil
}

func maskFields(v reflect.Value) map[string]interface{} {
	t := v.Type()
	out := make(map[string]interface{}, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)
		switch field.Kind() {
		case reflect.Struct:
			out[sf.Name] = maskFields(field)
		case reflect.String:
			if sf.Tag.Get("masked") == "true" {
				out[sf.Name] = mask(field.String())
			} else {
				out[sf.Name] = field.String()
			}
		default:
			out[sf.Name] = field.Interface()
		}
	}
	return out
}

func mask(s string) string {
	if len(s) <= 2 {
		return "****"
	}
	return string(s[0]) + "****" + string(s[len(s)-1])
}
