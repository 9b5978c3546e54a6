package database

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/minchat/minchat/internal/testutil"
)

func TestReport(t *testing.T) {
	repo := &MockChatRepository{}
	defer repo.AssertExpectations(t)

	done := make(chan struct{})
	repo.On("CreateErrorLog", "something broke", mock.AnythingOfType("time.Time")).
		Return(nil).Once().
		Run(func(args mock.Arguments) { close(done) })

	reporter := NewErrorReporter(testutil.TestLogger(t), repo)
	reporter.Report(errors.New("something broke"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected the error log write")
	}
}

func TestReport_NilError(t *testing.T) {
	repo := &MockChatRepository{}
	defer repo.AssertExpectations(t)

	reporter := NewErrorReporter(testutil.TestLogger(t), repo)
	reporter.Report(nil)
	// no CreateErrorLog call expected
}

func TestReport_WriteFailureIsDropped(t *testing.T) {
	repo := &MockChatRepository{}
	defer repo.AssertExpectations(t)

	done := make(chan struct{})
	repo.On("CreateErrorLog", "boom", mock.AnythingOfType("time.Time")).
		Return(errors.New("db unavailable")).Once().
		Run(func(args mock.Arguments) { close(done) })

	reporter := NewErrorReporter(testutil.TestLogger(t), repo)
	reporter.Report(errors.New("boom"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected the error log write attempt")
	}
}
