package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValueKey(t *testing.T) {
	assert.Equal(t, "1", NormalizeValueKey("1.0"))
	assert.Equal(t, "1", NormalizeValueKey(" 1 "))
	assert.Equal(t, "2.5", NormalizeValueKey("2.50"))
	assert.Equal(t, "男", NormalizeValueKey("男"))
}

func TestNormalizeValueKey_NonFiniteStaysText(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+Infinity", "1e999"} {
		assert.Equal(t, raw, NormalizeValueKey(raw), raw)
		_, ok := NumericKey(raw)
		assert.False(t, ok, raw)
	}
}

func TestSortValueKeys(t *testing.T) {
	keys := []string{"10", "2", "1"}
	SortValueKeys(keys)
	assert.Equal(t, []string{"1", "2", "10"}, keys)

	// one text key switches the whole set to string order
	keys = []string{"10", "2", "NaN"}
	SortValueKeys(keys)
	assert.Equal(t, []string{"10", "2", "NaN"}, keys)
}

func TestLabelSet_SetValueLabelsNormalizesKeys(t *testing.T) {
	labels := NewLabelSet()
	labels.SetValueLabels("q1", map[string]string{"1.0": "是", "NaN": "未作答"})

	got := labels.ValueLabelsFor("q1")
	assert.Equal(t, ValueLabels{"1": "是", "NaN": "未作答"}, got)
	assert.Equal(t, []string{"1", "NaN"}, got.SortedKeys())
}
