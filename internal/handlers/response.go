package handlers

import "github.com/labstack/echo/v4"

// ApiResponse is the envelope every endpoint returns
type ApiResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respondSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, ApiResponse{Status: status, Message: message, Data: data})
}

func respondFail(c echo.Context, status int, message string) error {
	return c.JSON(status, ApiResponse{Status: status, Message: message, Data: nil})
}
