package action

import "fmt"

type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindRateLimited  ErrorKind = "rate_limited"
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindBusinessRule ErrorKind = "business_rule"
	KindInternal     ErrorKind = "internal"
)

// Result is either Success or Failure. The unexported method keeps the set closed.
type Result[T any] interface {
	sealed() T
}

type Success[T any] struct {
	Data T
}

func (Success[T]) sealed() (zero T) { return zero }

type Failure[T any] struct {
	Kind    ErrorKind
	Message string
}

func (Failure[T]) sealed() (zero T) { return zero }

// Match calls exactly one of onSuccess and onFailure.
func Match[T, R any](r Result[T], onSuccess func(T) R, onFailure func(ErrorKind, string) R) R {
	switch v := r.(type) {
	case Success[T]:
		return onSuccess(v.Data)
	case Failure[T]:
		return onFailure(v.Kind, v.Message)
	default:
		panic(fmt.Sprintf("unexpected result variant %T", r))
	}
}

func IsSuccess[T any](r Result[T]) bool {
	_, ok := r.(Success[T])
	return ok
}
