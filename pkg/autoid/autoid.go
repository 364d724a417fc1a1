package autoid

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDAllocator hands out sequential ids scoped to one batch, so that
// a job id tells which batch it belongs to and in which position it
// was submitted.
type IDAllocator struct {
	sync.Mutex
	internalID int64
	prefix     string
}

func NewIDAllocator(prefix string) *IDAllocator {
	return &IDAllocator{
		prefix: prefix,
	}
}

func (a *IDAllocator) AllocID() string {
	a.Lock()
	defer a.Unlock()
	a.internalID++
	return fmt.Sprintf("%s-%d", a.prefix, a.internalID)
}

type UUIDAllocator struct{}

func NewUUIDAllocator() *UUIDAllocator {
	return new(UUIDAllocator)
}

func (a *UUIDAllocator) AllocID() string {
	return uuid.New().String()
}
