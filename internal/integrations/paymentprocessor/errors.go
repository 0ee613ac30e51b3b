package paymentprocessor

import "errors"

var (
	// ErrPaymentDeclined возвращается при терминальном отказе процессинга:
	// повторять операцию с тем же ключом бессмысленно
	ErrPaymentDeclined = errors.New("paymentprocessor client: payment declined")

	// ErrProcessorUnavailable возвращается, когда процессинг недоступен
	// и лимит повторов исчерпан
	ErrProcessorUnavailable = errors.New("paymentprocessor client: processor unavailable")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentprocessor client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе процессинга
	ErrInvalidResponse = errors.New("paymentprocessor client: invalid response")
)
