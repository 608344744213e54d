package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// JSONFieldName 返回结构体字段的 JSON 名，"-" 表示忽略
func JSONFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// BindJSON 解析请求体并执行 binding 校验。
// 解码失败时返回指明字段的 ValidationError，而不是原始的解码错误。
func BindJSON(c *gin.Context, obj any) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &errs.ValidationError{Message: "malformed JSON body"}
	}
	if err := json.Unmarshal(body, obj); err != nil {
		return decodeError(body, obj, err)
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return BindError(err)
	}
	return nil
}

// decodeError 逐个字段重新解码，找出第一个出错的字段
func decodeError(body []byte, obj any, err error) error {
	var synErr *json.SyntaxError
	if errors.As(err, &synErr) {
		return &errs.ValidationError{Message: "malformed JSON body"}
	}
	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) != nil {
		return &errs.ValidationError{Message: "expected a JSON object"}
	}

	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := JSONFieldName(f)
			if !f.IsExported() || name == "" {
				continue
			}
			msg, ok := raw[name]
			if !ok {
				continue
			}
			if ferr := json.Unmarshal(msg, reflect.New(f.Type).Interface()); ferr != nil {
				return errs.Invalid(name, "%s", decodeMessage(f.Type, ferr))
			}
		}
	}
	return &errs.ValidationError{Message: "malformed JSON body"}
}

// valueType 去掉指针和 Nullable 包装（带 Value 字段的结构体）
func valueType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName("Value"); ok {
			return valueType(f.Type)
		}
	}
	return t
}

func decodeMessage(t reflect.Type, err error) string {
	vt := valueType(t)
	if vt == uuidType {
		return "Must be a valid UUID."
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch vt.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return "A valid integer is required."
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return "A valid non-negative integer is required."
		case reflect.String:
			return "Not a valid string."
		case reflect.Bool:
			return "Must be a valid boolean."
		}
		return fmt.Sprintf("expected %s", vt.String())
	}
	return "Invalid value."
}
