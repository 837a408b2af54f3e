package palavra

import (
	"errors"
	"fmt"

	"PalavraCerta/internal/notify"
	"PalavraCerta/internal/plan"
)

var (
	ErrEmptyFeeling        = errors.New("feeling must not be empty")
	ErrEmptyText           = errors.New("text must not be empty")
	ErrSearchQuotaExceeded = errors.New("daily search quota exceeded")
	ErrSaveQuotaExceeded   = errors.New("saved verses quota exceeded")
	ErrAlreadySaved        = errors.New("verse already saved")
	ErrInvalidTheme        = errors.New("invalid theme")
	ErrProviderUnavailable = errors.New("verse provider unavailable")
)

// QuotaError is returned when a plan limit blocks an action.
// It unwraps to ErrSearchQuotaExceeded or ErrSaveQuotaExceeded.
type QuotaError struct {
	Kind  error
	Limit plan.Limit
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%v (limit %d)", e.Kind, e.Limit)
}

func (e *QuotaError) Unwrap() error {
	return e.Kind
}

// ToastFor is the notification shown for a failed action.
func ToastFor(err error) notify.Toast {
	var qe *QuotaError
	switch {
	case errors.As(err, &qe) && errors.Is(qe.Kind, ErrSearchQuotaExceeded):
		return notify.Error(fmt.Sprintf("Você atingiu seu limite de %d buscas diárias.", qe.Limit))
	case errors.As(err, &qe) && errors.Is(qe.Kind, ErrSaveQuotaExceeded):
		return notify.Error(fmt.Sprintf("Você atingiu seu limite de %d versículos salvos.", qe.Limit))
	case errors.Is(err, ErrAlreadySaved):
		return notify.Info("Este versículo já foi salvo.")
	case errors.Is(err, ErrEmptyFeeling):
		return notify.Info("Conte como você está se sentindo para buscarmos uma palavra.")
	case errors.Is(err, ErrInvalidTheme):
		return notify.Error("Tema inválido.")
	case errors.Is(err, plan.ErrInvalidPlan):
		return notify.Error("Plano inválido.")
	default:
		return notify.Error("Ocorreu um erro ao buscar o versículo. Tente novamente.")
	}
}
