package diaglog

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePlainValuesAreUnchanged(t *testing.T) {
	cases := []any{
		nil,
		"text",
		42,
		int64(42),
		3.14,
		true,
	}
	for _, v := range cases {
		assert.Equal(t, v, Sanitize(v))
	}
}

func TestSanitizeIdempotentOnPlainJSON(t *testing.T) {
	plain := map[string]any{
		"a": 1,
		"b": []any{1, 2, 3},
		"c": map[string]any{"nested": "yes"},
		"d": nil,
	}

	once := Sanitize(plain)
	twice := Sanitize(once)
	assert.Equal(t, plain, once)
	assert.Equal(t, once, twice)
}

func TestSanitizeTypedContainers(t *testing.T) {
	got := Sanitize(map[string]any{"nums": []int{1, 2, 3}})
	want := map[string]any{"nums": []any{1, 2, 3}}
	assert.Equal(t, want, got)
}

func TestSanitizeCircularMap(t *testing.T) {
	m := map[string]any{"name": "root"}
	m["self"] = m

	var got any
	assert.NotPanics(t, func() { got = Sanitize(m) })

	gotMap, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "root", gotMap["name"])
	assert.Equal(t, "<circular>", gotMap["self"])
}

func TestSanitizeCircularSlice(t *testing.T) {
	s := make([]any, 2)
	s[0] = "head"
	s[1] = s

	var got any
	assert.NotPanics(t, func() { got = Sanitize(s) })

	gotSlice, ok := got.([]any)
	require.True(t, ok)
	assert.Equal(t, "head", gotSlice[0])
	assert.Equal(t, "<circular>", gotSlice[1])
}

func TestSanitizeMutuallyReferentialStructs(t *testing.T) {
	type nodeB struct {
		Name string `json:"name"`
		A    any    `json:"a"`
	}
	type nodeA struct {
		Name string `json:"name"`
		B    *nodeB `json:"b"`
	}

	a := &nodeA{Name: "A"}
	b := &nodeB{Name: "B"}
	a.B = b
	b.A = a

	var got any
	assert.NotPanics(t, func() { got = Sanitize(a) })

	gotMap, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A", gotMap["name"])
	inner, ok := gotMap["b"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "B", inner["name"])
	assert.Equal(t, "<circular>", inner["a"])
}

func TestSanitizeErrorDegradesToShape(t *testing.T) {
	err := errors.New("it broke")
	got := Sanitize(err)

	shape, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "it broke", shape["message"])
	assert.NotEmpty(t, shape["name"])
}

func TestSanitizeNonSerializableDegradesToString(t *testing.T) {
	got := Sanitize(func() {})
	_, isString := got.(string)
	assert.True(t, isString, "func values degrade to a string form, got %T", got)

	ch := make(chan int)
	got = Sanitize(map[string]any{"ch": ch})
	gotMap, ok := got.(map[string]any)
	require.True(t, ok)
	_, isString = gotMap["ch"].(string)
	assert.True(t, isString)
}

func TestSanitizeStructUsesJSONTags(t *testing.T) {
	type inner struct {
		Renamed string `json:"renamed_field"`
		Skipped string `json:"-"`
		Plain   string
	}

	got := Sanitize(inner{Renamed: "r", Skipped: "s", Plain: "p"})
	gotMap, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "r", gotMap["renamed_field"])
	assert.Equal(t, "p", gotMap["Plain"])
	assert.NotContains(t, gotMap, "Skipped")
	assert.NotContains(t, gotMap, "-")
}

func TestSanitizeTimeBecomesString(t *testing.T) {
	ts := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	got := Sanitize(ts)
	assert.Equal(t, ts.Format(time.RFC3339Nano), got)
}

func TestSanitizeDepthCapTruncatesWithPlaceholder(t *testing.T) {
	deep := map[string]any{}
	current := deep
	for i := 0; i < sanitizeMaxDepth+5; i++ {
		next := map[string]any{}
		current["next"] = next
		current = next
	}
	current["leaf"] = "bottom"

	var got any
	assert.NotPanics(t, func() { got = Sanitize(deep) })

	// Walking down the copy must end at the placeholder, never a raw map.
	node := got
	for {
		m, ok := node.(map[string]any)
		if !ok {
			break
		}
		node = m["next"]
	}
	assert.Equal(t, "<max depth>", node)

	_, err := json.Marshal(got)
	assert.NoError(t, err)
}

func TestSanitizeCycleLongerThanDepthCap(t *testing.T) {
	// A ring of maps longer than the depth cap hits the cap before the
	// visited set sees a repeat; the copy must still terminate and marshal.
	head := map[string]any{}
	current := head
	for i := 0; i < sanitizeMaxDepth+4; i++ {
		next := map[string]any{}
		current["next"] = next
		current = next
	}
	current["next"] = head

	var got any
	assert.NotPanics(t, func() { got = Sanitize(head) })

	_, err := json.Marshal(got)
	assert.NoError(t, err)
}

func TestSanitizeNonFiniteFloatsDegradeToString(t *testing.T) {
	got := Sanitize(map[string]any{
		"nan":    math.NaN(),
		"posinf": math.Inf(1),
		"neginf": math.Inf(-1),
		"finite": 1.5,
	})

	gotMap, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NaN", gotMap["nan"])
	assert.Equal(t, "+Inf", gotMap["posinf"])
	assert.Equal(t, "-Inf", gotMap["neginf"])
	assert.Equal(t, 1.5, gotMap["finite"])

	_, err := json.Marshal(got)
	assert.NoError(t, err)
}
