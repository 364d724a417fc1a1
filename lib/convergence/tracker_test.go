package convergence

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/jobsweep/lib/fake"
	"github.com/hanfei1991/jobsweep/lib/report"
	"github.com/hanfei1991/jobsweep/model"
	"github.com/hanfei1991/jobsweep/pkg/promutil"
)

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) Render(results []model.ResultRecord) error {
	args := m.Called(results)
	return args.Error(0)
}

func TestUpdateExampleBatch(t *testing.T) {
	t.Parallel()

	h4 := fake.NewHandle("4")
	handles := fake.ToJobHandles(
		fake.NewDoneHandle("1", model.ResultRecord{"count": 2, "score": 0.41}),
		fake.NewFailedHandle("2", errors.New("boom")),
		fake.NewDoneHandle("3", model.ResultRecord{"count": 3, "score": 0.55}),
		h4,
		fake.NewDoneHandle("5", model.ResultRecord{"count": 3, "score": 0.55}),
	)

	rep := &mockReporter{}
	rep.On("Render", []model.ResultRecord{
		{"count": 2, "score": 0.41},
		{"count": 3, "score": 0.55},
	}).Return(nil).Once()
	rep.On("Render", []model.ResultRecord{
		{"count": 2, "score": 0.41},
		{"count": 3, "score": 0.55},
		{"count": 4, "score": 0.62},
	}).Return(nil).Once()

	tr := NewTracker(rep, nil)
	seen, changed := tr.Update(handles)
	require.True(t, changed)
	require.Equal(t, SeenSet{
		{"count": 2, "score": 0.41},
		{"count": 3, "score": 0.55},
	}, seen)

	seen, changed = tr.Update(handles)
	require.False(t, changed)
	require.Len(t, seen, 2)

	h4.Finish(model.ResultRecord{"count": 4, "score": 0.62})
	seen, changed = tr.Update(handles)
	require.True(t, changed)
	require.Len(t, seen, 3)
	require.Equal(t, model.ResultRecord{"count": 4, "score": 0.62}, seen[2])

	rep.AssertExpectations(t)
}

func TestUpdateReadsEachHandleOnce(t *testing.T) {
	t.Parallel()

	done := fake.NewDoneHandle("d", model.ResultRecord{"count": 2})
	failed := fake.NewFailedHandle("f", errors.New("x"))
	handles := fake.ToJobHandles(done, failed)

	tr := NewTracker(nil, nil)
	for i := 0; i < 5; i++ {
		tr.Update(handles)
	}
	// Status asks IsFailed, then IsDone when not failed.
	require.Equal(t, int64(2), done.StatusQueries())
	require.Equal(t, int64(1), failed.StatusQueries())
}

func TestUpdateChangedIffNewDistinct(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		records []model.ResultRecord
		changed []bool
	}{
		{
			name:    "all distinct",
			records: []model.ResultRecord{{"v": 1}, {"v": 2}, {"v": 3}},
			changed: []bool{true, true, true},
		},
		{
			name:    "all equal",
			records: []model.ResultRecord{{"v": 1}, {"v": 1}, {"v": 1}},
			changed: []bool{true, false, false},
		},
		{
			name:    "interleaved",
			records: []model.ResultRecord{{"v": 1}, {"v": 2}, {"v": 1}, {"v": 3}},
			changed: []bool{true, true, false, true},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handles := make([]*fake.Handle, len(tc.records))
			for i := range handles {
				handles[i] = fake.NewHandle("h")
			}
			jobs := fake.ToJobHandles(handles...)

			tr := NewTracker(nil, nil)
			for i, r := range tc.records {
				handles[i].Finish(r)
				_, changed := tr.Update(jobs)
				require.Equal(t, tc.changed[i], changed, "step %d", i)
			}
			seen := tr.Seen()
			for i := range seen {
				for j := i + 1; j < len(seen); j++ {
					require.False(t, seen[i].Equal(seen[j]))
				}
			}
		})
	}
}

func TestReporterErrorIsNotFatal(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rep := report.ReporterFunc(func([]model.ResultRecord) error {
		return errors.New("terminal detached")
	})
	tr := NewTracker(rep, promutil.NewFactory(reg, "jobsweep", nil))

	h := fake.NewHandle("b")
	handles := fake.ToJobHandles(fake.NewDoneHandle("a", model.ResultRecord{"v": 1}), h)
	_, changed := tr.Update(handles)
	require.True(t, changed)

	h.Finish(model.ResultRecord{"v": 2})
	seen, changed := tr.Update(handles)
	require.True(t, changed)
	require.Len(t, seen, 2)

	require.Equal(t, 2.0, testutil.ToFloat64(tr.renders))
	require.Equal(t, 2.0, testutil.ToFloat64(tr.renderErrors))
	require.Equal(t, 2.0, testutil.ToFloat64(tr.distinct))
}

func TestSeenReturnsCopy(t *testing.T) {
	t.Parallel()

	tr := NewTracker(nil, nil)
	tr.Update(fake.ToJobHandles(fake.NewDoneHandle("a", model.ResultRecord{"v": 1})))

	seen := tr.Seen()
	seen[0] = model.ResultRecord{"v": 100}
	seen = append(seen, model.ResultRecord{"v": 2})
	require.Len(t, seen, 2)
	require.Equal(t, SeenSet{{"v": 1}}, tr.Seen())
}

func TestSnapshotIsolatedFromLaterUpdates(t *testing.T) {
	t.Parallel()

	var snapshots []SeenSet
	rep := report.ReporterFunc(func(results []model.ResultRecord) error {
		snapshots = append(snapshots, results)
		return nil
	})
	tr := NewTracker(rep, nil)

	h := fake.NewHandle("b")
	handles := fake.ToJobHandles(fake.NewDoneHandle("a", model.ResultRecord{"v": 1}), h)
	tr.Update(handles)
	h.Finish(model.ResultRecord{"v": 2})
	tr.Update(handles)

	require.Len(t, snapshots, 2)
	require.Len(t, snapshots[0], 1)
	require.Len(t, snapshots[1], 2)
}
