package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeString возвращается при некорректном формате времени
var ErrInvalidTimeString = errors.New("types: invalid time string format, expected HH:MM")

// TimeString represents a wall-clock time of day in "HH:MM" format.
// It deliberately carries no date and no timezone: the owning rule supplies
// both when the time is resolved to an absolute instant.
type TimeString string

// NewTimeString создает TimeString из time.Time (берёт только часы и минуты)
func NewTimeString(t time.Time) TimeString {
	return TimeString(fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()))
}

// NewTimeStringFromString парсит и валидирует строку "HH:MM"
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет формат HH:MM
func (t TimeString) Validate() error {
	if len(t) != 5 || t[2] != ':' {
		return ErrInvalidTimeString
	}
	h, m, ok := t.parts()
	if !ok || h < 0 || h > 23 || m < 0 || m > 59 {
		return ErrInvalidTimeString
	}
	return nil
}

// IsZero возвращает true для пустого значения
func (t TimeString) IsZero() bool {
	return t == ""
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// Hour возвращает часы (0-23)
func (t TimeString) Hour() int {
	h, _, _ := t.parts()
	return h
}

// Minute возвращает минуты (0-59)
func (t TimeString) Minute() int {
	_, m, _ := t.parts()
	return m
}

// TotalMinutes возвращает количество минут с начала суток
func (t TimeString) TotalMinutes() int {
	h, m, _ := t.parts()
	return h*60 + m
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.TotalMinutes() < other.TotalMinutes()
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.TotalMinutes() > other.TotalMinutes()
}

// AddMinutes возвращает время через minutes минут
// Возвращает ошибку при выходе за границы суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	total := t.TotalMinutes() + minutes
	if total < 0 || total > 24*60 {
		return "", fmt.Errorf("%w: %s + %d minutes is out of day range", ErrInvalidTimeString, t, minutes)
	}
	// 24:00 допустимо только как конец интервала, нормализуем в 23:59 нельзя -
	// храним как есть, сравнения через TotalMinutes остаются корректными
	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// MarshalJSON сериализует как обычную строку
func (t TimeString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// UnmarshalJSON десериализует и валидирует значение
func (t *TimeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

func (t TimeString) parts() (hour, minute int, ok bool) {
	var h, m int
	if _, err := fmt.Sscanf(string(t), "%02d:%02d", &h, &m); err != nil {
		return 0, 0, false
	}
	return h, m, true
}
