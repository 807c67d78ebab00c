package systems

import "errors"

var (
	// ErrInvalidRemoval means an entity was removed from a registry it was
	// not in. The scheduler and spatial index have fallen out of sync.
	ErrInvalidRemoval = errors.New("invalid removal")

	// ErrCellOccupied is returned by grid placement into a taken cell.
	ErrCellOccupied = errors.New("cell occupied")

	// ErrOutOfBounds is returned when placing outside the domain.
	ErrOutOfBounds = errors.New("position out of bounds")
)
