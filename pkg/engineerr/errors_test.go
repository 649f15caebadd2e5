/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

package engineerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Vishnuvikas56/automateprint/pkg/engineerr"
)

func TestPartialSchedule_UnwrapsToCause(t *testing.T) {
	cause := &engineerr.InsufficientResource{PrinterID: "P1", Resource: "paper:A4"}
	err := &engineerr.PartialSchedule{OrderID: "o1", CommittedPrinterIDs: []string{"P2"}, Cause: cause}

	var insufficient *engineerr.InsufficientResource
	assert.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "P1", insufficient.PrinterID)
}

func TestSchedulerInternal_UnwrapsToCause(t *testing.T) {
	cause := errors.New("lock acquisition timed out")
	err := &engineerr.SchedulerInternal{Cause: cause}

	assert.ErrorIs(t, err, cause)
}

func TestConflictError_MessageNamesBothVersions(t *testing.T) {
	err := &engineerr.ConflictError{PrinterID: "P1", ExpectVersion: 3, ActualVersion: 4}
	assert.Contains(t, err.Error(), "3")
	assert.Contains(t, err.Error(), "4")
}
