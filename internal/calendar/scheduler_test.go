package calendar

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weekly-planner/backend/internal/planner"
)

type staticSource []planner.User

func (s staticSource) Users() []planner.User { return s }

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BroadcastScheduleExported(dir string, users []string) {
	m.Called(dir, users)
}

func TestExporter_ExportNow(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	codec, err := NewICSCodec("")
	require.NoError(t, err)
	empty, err := planner.NewUser("a/b")
	require.NoError(t, err)
	users := staticSource{sampleUser(t), empty}

	notifier := new(mockNotifier)
	notifier.On("BroadcastScheduleExported", dir, []string{"Prof. Lucia", "a/b"}).Return()

	x := NewExporter(users, codec, dir, "", notifier)
	result, err := x.ExportNow(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Files, 4)
	assert.Equal(t, result, x.LastResult())
	notifier.AssertExpectations(t)

	doc, err := os.ReadFile(filepath.Join(dir, "Prof._Lucia.txt"))
	require.NoError(t, err)
	got, err := DecodeSchedule(bytes.NewReader(doc))
	require.NoError(t, err)
	assertSameEvents(t, users[0], got)

	_, err = os.Stat(filepath.Join(dir, "a_b.ics"))
	assert.NoError(t, err)
}

func TestExporter_StartStop(t *testing.T) {
	x := NewExporter(staticSource{}, nil, t.TempDir(), "@every 1h", nil)
	assert.Nil(t, x.NextRun())

	require.NoError(t, x.Start(context.Background()))
	assert.NotNil(t, x.NextRun())
	x.Stop()
	assert.Nil(t, x.NextRun())
}

func TestExporter_InvalidSpec(t *testing.T) {
	x := NewExporter(staticSource{}, nil, t.TempDir(), "not a cron spec", nil)
	assert.Error(t, x.Start(context.Background()))
}

func TestFileBase(t *testing.T) {
	assert.Equal(t, "Prof._Lucia", fileBase("Prof. Lucia"))
	assert.Equal(t, "user", fileBase(".."))
	assert.Equal(t, "_etc_passwd", fileBase("/etc/passwd"))
}
