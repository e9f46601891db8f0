package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

func TestPlainText_FormatsBasicFields(t *testing.T) {
	ts := time.Unix(0, 1234567890)
	rec := logcore.NewBuilder("svc.module").
		Time(ts).
		Level(logcore.Info).
		Message("hello world").
		Build()

	out, err := New().Format(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, "1234567890   INFO svc.module: hello world", string(out))
}

func TestPlainText_IncludesFileAndLineWhenPresent(t *testing.T) {
	rec := logcore.NewBuilder("svc").
		Time(time.Unix(0, 0)).
		Level(logcore.Warn).
		File("/path/to/handler.go").
		Line(88).
		Message("careful").
		Build()

	out, err := New().Format(rec, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "handler.go:88 careful")
}

func TestPlainText_OmitsLineWithoutFile(t *testing.T) {
	rec := logcore.NewBuilder("svc").
		Time(time.Unix(0, 0)).
		Level(logcore.Info).
		Message("msg").
		Build()

	out, err := New().Format(rec, nil)
	require.NoError(t, err)
	assert.NotContains(t, string(out), ":0")
}

func TestPlainText_RecordKVsBeforeDiagnosticKVs(t *testing.T) {
	rec := logcore.NewBuilder("svc").
		Time(time.Unix(0, 0)).
		Level(logcore.Info).
		Message("msg").
		KV("rec_key", logcore.StringValue("rec_val")).
		Build()

	m := diagnostic.NewStaticMap()
	m.Set("diag_key", logcore.StringValue("diag_val"))

	out, err := New().Format(rec, []diagnostic.Diagnostic{m})
	require.NoError(t, err)

	s := string(out)
	recIdx := indexOf(s, "rec_key=rec_val")
	diagIdx := indexOf(s, "diag_key=diag_val")
	require.GreaterOrEqual(t, recIdx, 0)
	require.GreaterOrEqual(t, diagIdx, 0)
	assert.Less(t, recIdx, diagIdx, "record kvs must render before diagnostic kvs")
}

func TestPlainText_NegativeNanosBeforeEpoch(t *testing.T) {
	rec := logcore.NewBuilder("svc").
		Time(time.Unix(0, -500)).
		Level(logcore.Info).
		Message("early").
		Build()

	out, err := New().Format(rec, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "-500 ")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
