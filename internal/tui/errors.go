// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-plan-keeper/internal/adapter"
)

var ErrUserQuit = errors.New("user quit")

// humanizeError turns an error of the session or sync layer into a message
// for the user.
func humanizeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, adapter.ErrNetwork),
		errors.Is(err, adapter.ErrTimeout),
		errors.Is(err, adapter.ErrAborted),
		errors.Is(err, context.DeadlineExceeded):
		return "Отсутствует сеть или сервер недоступен"
	case errors.Is(err, adapter.ErrServiceUnavailable),
		errors.Is(err, adapter.ErrInternalServerError):
		return "Сервер временно не отвечает"
	case errors.Is(err, adapter.ErrUnauthorized):
		return "Неверный логин или пароль"
	case errors.Is(err, adapter.ErrNoSession):
		return "Сессия истекла, войдите снова"
	case errors.Is(err, adapter.ErrConflict):
		return "Логин уже занят"
	case errors.Is(err, adapter.ErrPayloadTooLarge):
		return "Запись слишком большая"
	case errors.Is(err, adapter.ErrBadRequest):
		return "Сервер отклонил запись"
	}
	return err.Error()
}
