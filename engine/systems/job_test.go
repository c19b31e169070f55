package systems

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
)

func TestNewJobSystemValidates(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)

	var mu sync.Mutex
	var results []interface{}
	var failures []error
	var done sync.WaitGroup
	done.Add(3)

	submit := func(start metadata.JobStart) {
		js.Submit(metadata.JobTask{
			Name:    "test",
			JobType: metadata.JOB_TYPE_GENERAL,
			OnStart: start,
			OnComplete: func(r interface{}) {
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			},
			OnFailure: func(err error) {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			},
			OnCompletionCallback: done.Done,
		})
	}
	submit(func(interface{}) (interface{}, error) { return 42, nil })
	submit(func(interface{}) (interface{}, error) { return nil, errors.New("nope") })
	submit(func(interface{}) (interface{}, error) { panic("bad job") })

	done.Wait()
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	assert.Equal(t, []interface{}{42}, results)
	assert.Len(t, failures, 2)
}
