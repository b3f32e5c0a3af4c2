package matching

import "fmt"

// DataUnavailableError ошибка построения газетира из пустых или отсутствующих
// справочных данных. Фатальна на этапе конструирования, не возникает на запросах
type DataUnavailableError struct {
	Reason string
}

func (e *DataUnavailableError) Error() string {
	return "reference data unavailable: " + e.Reason
}

// SignalUnavailableError сигнальная стратегия (эмбеддинги или LLM) не настроена
// или вернула ошибку. Не фатальна: каскад пропускает стратегию и продолжает
type SignalUnavailableError struct {
	Signal string
	Err    error
}

func (e *SignalUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("signal %q unavailable", e.Signal)
	}
	return fmt.Sprintf("signal %q unavailable: %v", e.Signal, e.Err)
}

func (e *SignalUnavailableError) Unwrap() error {
	return e.Err
}
