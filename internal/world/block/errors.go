package block

import "errors"

// Ошибки конфигурации материалов. Все они должны всплывать при старте,
// а не во время тиков.
var (
	ErrNoReplacedMaterial = errors.New("block: spreading material has no replaced material")
	ErrSelfReplacement    = errors.New("block: spreading material replaces itself")
	ErrZeroOffset         = errors.New("block: effect range contains the zero offset")
	ErrInvalidRadius      = errors.New("block: effect range radius must be positive")
	ErrNilStrategy        = errors.New("block: spreading material has no strategy")
	ErrDuplicateMaterial  = errors.New("block: dynamic material already registered")
)
