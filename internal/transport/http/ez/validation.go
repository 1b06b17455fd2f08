package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldErrors 不属于具体字段的错误 key
const NonFieldErrors = "non_field_errors"

func init() {
	// 字段错误里用 json 名（re_password 而不是 RePassword）
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// bindJSON 空 body 视为 {}，仍然走字段校验
func bindJSON(c *gin.Context, in any) error {
	err := c.ShouldBindJSON(in)
	if errors.Is(err, io.EOF) {
		return binding.Validator.ValidateStruct(in)
	}
	return err
}

// FieldErrors 把 bind / 校验错误转成 {field: [msg]}
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	var ves validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &ves):
		for _, fe := range ves {
			out[fe.Field()] = append(out[fe.Field()], fieldMessage(fe))
		}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		out[typeErr.Field] = append(out[typeErr.Field], typeMessage(typeErr.Type))
	case errors.As(err, &maxErr):
		out[NonFieldErrors] = []string{"Request body too large."}
	default:
		out[NonFieldErrors] = []string{"Invalid request body: " + err.Error()}
	}
	return out
}

func typeMessage(t reflect.Type) string {
	if t == nil {
		return "Incorrect type."
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Float32, reflect.Float64:
		return "A valid number is required."
	}
	return "Incorrect type."
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "max":
		if isString {
			return "Ensure this field has no more than " + fe.Param() + " characters."
		}
		return "Ensure this value is less than or equal to " + fe.Param() + "."
	case "min":
		if isString {
			return "Ensure this field has at least " + fe.Param() + " characters."
		}
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	}
	return "Invalid value."
}
