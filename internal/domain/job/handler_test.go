package job

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	h := &Handler{}

	tests := []struct {
		err  error
		want int
	}{
		{ErrJobNotFound, http.StatusNotFound},
		{ErrAssignmentNotFound, http.StatusNotFound},
		{ErrNotTeacher, http.StatusForbidden},
		{ErrNotJobOwner, http.StatusForbidden},
		// Only the duplicate application is a conflict; invalid-state
		// rejections are bad requests.
		{ErrAlreadyApplied, http.StatusConflict},
		{ErrJobNotOpen, http.StatusBadRequest},
		{ErrJobFull, http.StatusBadRequest},
		{ErrJobNotCloseable, http.StatusBadRequest},
		{ErrInvalidTransition, http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		h.writeError(w, tt.err)
		if w.Code != tt.want {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.want, w.Code)
		}
	}
}
