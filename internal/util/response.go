package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// 业务错误码
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
)

// Success 统一成功返回
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Created 用于新建资源，201
func Created(c *gin.Context, data Response) {
	c.JSON(http.StatusCreated, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// NoContent 删除成功，204 无 body
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 统一错误返回
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// FieldError 带字段名的错误返回
func FieldError(c *gin.Context, httpStatus int, code int, field, msg string) {
	body := gin.H{
		"code":    code,
		"message": msg,
	}
	if field != "" {
		body["field"] = field
	}
	c.JSON(httpStatus, body)
}

// Fail 把 err 映射为错误响应，未归类的错误挂到 context 供请求日志记录，返回 500
func Fail(c *gin.Context, err error) {
	var (
		ve *errs.ValidationError
		ce *errs.ConflictError
	)
	err = BindError(err)
	switch {
	case errors.As(err, &ve):
		FieldError(c, http.StatusBadRequest, CodeInvalidParam, ve.Field, ve.Message)
	case errors.As(err, &ce):
		FieldError(c, http.StatusBadRequest, CodeConflict, ce.Field, ce.Message)
	case errors.Is(err, errs.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, CodeAuth, "Authentication credentials were not provided.")
	case errors.Is(err, errs.ErrForbidden):
		Error(c, http.StatusForbidden, CodeForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, errs.ErrNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, "Not found.")
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, CodeServerErr, "internal server error")
	}
}

// BindError 把 gin 的校验失败转换为带首个出错字段的 ValidationError，其他错误原样返回
func BindError(err error) error {
	var (
		vErrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		synErr  *json.SyntaxError
	)
	switch {
	case errors.As(err, &vErrs) && len(vErrs) > 0:
		fe := vErrs[0]
		return &errs.ValidationError{Field: fe.Field(), Message: fieldMessage(fe)}
	case errors.As(err, &typeErr):
		return errs.Invalid(typeErr.Field, "expected %s", typeErr.Type.String())
	case errors.As(err, &synErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &errs.ValidationError{Message: "malformed JSON body"}
	}
	return err
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	}
	return fmt.Sprintf("failed on %q", fe.Tag())
}
