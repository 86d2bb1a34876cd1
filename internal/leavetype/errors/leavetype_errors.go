package leavetypeerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrLeaveTypeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"leave type with this name already exists",
		http.StatusConflict,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidGender = apperror.New(
		apperror.CodeInvalidInput,
		"applicable_gender must be male, female or all",
		http.StatusBadRequest,
	)
)
