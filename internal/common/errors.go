// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют разделять ошибки валидации на границе приёма событий
// и ошибки хранилища/коллабораторов.
package common

import "errors"

// Ошибки приёма событий (валидация на границе)
var (
	// ErrNoSubjectUser — событие без пользователя-субъекта
	ErrNoSubjectUser = errors.New("событие без пользователя-субъекта")
	// ErrSelfReaction — реакция на собственное сообщение (не учитывается)
	ErrSelfReaction = errors.New("реакция на собственное сообщение не учитывается")
	// ErrNoReactionSymbol — событие-реакция без символа реакции
	ErrNoReactionSymbol = errors.New("событие-реакция без символа реакции")
	// ErrUnknownKind — неизвестный тип события
	ErrUnknownKind = errors.New("неизвестный тип события")
)

// Ошибки запросов
var (
	// ErrBadWindow — некорректное окно запроса (until <= since)
	ErrBadWindow = errors.New("некорректное окно: until должен быть позже since")
	// ErrEventNotFound — событие не найдено в леджере
	ErrEventNotFound = errors.New("событие не найдено")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)
