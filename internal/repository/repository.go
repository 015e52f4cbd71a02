package repository

import "errors"

// ErrNotFound normaliza el "no existe" de la capa de storage para que los
// servicios no dependan de pgx.
var ErrNotFound = errors.New("not found")
