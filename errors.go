package numrange

import (
	"errors"
	"fmt"

	domainrange "github.com/helixml/numrange/domain/numrange"
)

// Exported errors for library consumers.
var (
	// ErrInvalidMaxRangeSize indicates a maximum range size outside
	// [1, MaxRenderableSize].
	ErrInvalidMaxRangeSize = fmt.Errorf("numrange: max range size must be between 1 and %d",
		domainrange.MaxRenderableSize)

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("numrange: client is closed")
)
