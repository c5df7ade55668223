package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"announcehub/internal/constants"
	"announcehub/internal/model"
	"announcehub/internal/repository"
	"announcehub/internal/service"
	"announcehub/pkg/logger"
)

// OK 成功响应
func OK(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code": http.StatusOK,
		"msg":  msg,
		"data": data,
	})
}

// Fail 失败响应，code与HTTP状态码一致
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"code": status,
		"msg":  msg,
	})
}

// StatusOf 错误对应的HTTP状态码
func StatusOf(err error) int {
	switch {
	case errors.Is(err, repository.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repository.ErrUpstream):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Error 按错误类型返回响应，服务端错误记录日志
func Error(c *gin.Context, log *logger.Logger, action string, err error) {
	status := StatusOf(err)
	switch status {
	case http.StatusInternalServerError:
		log.Error(action+"失败", err)
		Fail(c, status, constants.ErrInternalServer)
	case http.StatusServiceUnavailable:
		log.Error(action+"失败", err)
		Fail(c, status, constants.ErrUpstream)
	case http.StatusForbidden:
		if errors.Is(err, service.ErrBanned) {
			Fail(c, status, constants.ErrBlacklisted)
			return
		}
		Fail(c, status, err.Error())
	default:
		Fail(c, status, err.Error())
	}
}

// BindFields 读取公告字段，包含未知字段时返回400
func BindFields(c *gin.Context) (model.Fields, bool) {
	var input model.Fields
	if err := c.ShouldBindJSON(&input); err != nil || input == nil {
		Fail(c, http.StatusBadRequest, constants.ErrInvalidRequest)
		return nil, false
	}
	if unknown := model.UnknownKeys(input); len(unknown) > 0 {
		Fail(c, http.StatusBadRequest, constants.ErrUnknownField+": "+strings.Join(unknown, ", "))
		return nil, false
	}
	return input, true
}
