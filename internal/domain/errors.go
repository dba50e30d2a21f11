package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrDuplicate       = errors.New("recurso duplicado")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrConflict        = errors.New("conflicto con el estado actual")
	ErrTimerActive     = errors.New("ya hay un temporizador activo en otro ticket")
	ErrNotConfigured   = errors.New("configuración requerida ausente")
	ErrNoBillableItems = errors.New("no hay ítems facturables")
)
