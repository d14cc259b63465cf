package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aprovame/pkg/document"
)

func TestCPFIsValid(t *testing.T) {
	for _, seed := range []int64{100_000_001, 123_456_789, 987_654_321} {
		cpf := CPF(seed)
		assert.Len(t, cpf, 11)
		assert.True(t, document.IsValid(cpf), cpf)
	}
	// Known document: 529.982.247-25
	assert.Equal(t, "52998224725", CPF(529_982_247))
}

func TestUniqueCPF(t *testing.T) {
	seen := map[string]struct{}{}
	for range 100 {
		cpf := UniqueCPF()
		_, dup := seen[cpf]
		require.False(t, dup, cpf)
		seen[cpf] = struct{}{}
	}
}

func TestBuilders(t *testing.T) {
	a := NewAssignorBuilder().WithName("Cedente").Build()
	assert.Equal(t, "Cedente", a.Name)
	assert.True(t, document.IsValid(a.Document))

	b := NewBatchBuilder().WithItems(3, a.ID).Build()
	assert.Equal(t, 3, b.TotalPayables)
	assert.Equal(t, []string{"1.5", "2.5", "3.5"}, []string{b.Items[0].Value.String(), b.Items[1].Value.String(), b.Items[2].Value.String()})
	assert.Len(t, b.AssignorIDs(), 1)
}
