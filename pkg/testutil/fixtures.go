package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	assignormodels "aprovame/internal/assignor/models"
	batchmodels "aprovame/internal/batch/models"
	id "aprovame/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	AssignorID1 id.AssignorID
	AssignorID2 id.AssignorID
}{
	AssignorID1: id.AssignorID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	AssignorID2: id.AssignorID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
}

var docSeq atomic.Int64

// CPF returns a checksum-valid CPF built from seed. Distinct seeds below 10^9
// give distinct documents.
func CPF(seed int64) string {
	base := fmt.Sprintf("%09d", seed%1_000_000_000)
	d := make([]int, 11)
	for i := range 9 {
		d[i] = int(base[i] - '0')
	}
	d[9] = mod11(d[:9], 10)
	d[10] = mod11(d[:10], 11)
	out := make([]byte, 11)
	for i, v := range d {
		out[i] = byte('0' + v)
	}
	return string(out)
}

// UniqueCPF returns a valid CPF not returned before in this process.
func UniqueCPF() string {
	return CPF(100_000_000 + docSeq.Add(1))
}

func mod11(payload []int, firstWeight int) int {
	sum := 0
	for i, v := range payload {
		sum += v * (firstWeight - i)
	}
	if rem := sum % 11; rem >= 2 {
		return 11 - rem
	}
	return 0
}

// AssignorBuilder provides a fluent API for building test assignors.
type AssignorBuilder struct {
	id       id.AssignorID
	document string
	email    string
	phone    string
	name     string
	now      time.Time
}

func NewAssignorBuilder() *AssignorBuilder {
	n := docSeq.Add(1)
	return &AssignorBuilder{
		id:       id.NewAssignorID(),
		document: CPF(100_000_000 + n),
		email:    fmt.Sprintf("assignor-%d@example.com", n),
		phone:    "+55 11 90000-0000",
		name:     fmt.Sprintf("Assignor %d", n),
		now:      time.Now(),
	}
}

func (b *AssignorBuilder) WithID(assignorID id.AssignorID) *AssignorBuilder {
	b.id = assignorID
	return b
}

func (b *AssignorBuilder) WithDocument(doc string) *AssignorBuilder {
	b.document = doc
	return b
}

func (b *AssignorBuilder) WithEmail(email string) *AssignorBuilder {
	b.email = email
	return b
}

func (b *AssignorBuilder) WithName(name string) *AssignorBuilder {
	b.name = name
	return b
}

// Build panics on invalid input; builders are for tests only.
func (b *AssignorBuilder) Build() *assignormodels.Assignor {
	a, err := assignormodels.NewAssignor(b.id, b.document, b.email, b.phone, b.name, b.now)
	if err != nil {
		panic(fmt.Sprintf("testutil: invalid assignor fixture: %v", err))
	}
	return a
}

// BatchBuilder builds queue payloads.
type BatchBuilder struct {
	items []batchmodels.Item
	now   time.Time
}

func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{now: time.Now()}
}

// WithItem appends one payable; value is parsed with decimal.RequireFromString.
func (b *BatchBuilder) WithItem(value string, emission time.Time, assignorID id.AssignorID) *BatchBuilder {
	b.items = append(b.items, batchmodels.Item{
		Value:        decimal.RequireFromString(value),
		EmissionDate: emission,
		AssignorID:   assignorID,
	})
	return b
}

// WithItems appends n valid payables for assignorID emitted a day ago.
func (b *BatchBuilder) WithItems(n int, assignorID id.AssignorID) *BatchBuilder {
	for i := range n {
		b.WithItem(fmt.Sprintf("%d.50", i+1), b.now.AddDate(0, 0, -1), assignorID)
	}
	return b
}

func (b *BatchBuilder) Build() *batchmodels.Batch {
	return batchmodels.NewBatch(b.items, b.now)
}
