package room

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syncroom/server/internal/repository/session"
)

func TestDecidePlay(t *testing.T) {
	assert.Equal(t, playAccept, decidePlay(true, false))
	assert.Equal(t, playAccept, decidePlay(true, true))
	assert.Equal(t, playAcceptThrottled, decidePlay(false, true))
	assert.Equal(t, playReject, decidePlay(false, false))
}

func TestDecideAuthoritative(t *testing.T) {
	assert.True(t, decideAuthoritative(true, true))
	assert.True(t, decideAuthoritative(true, false))
	assert.True(t, decideAuthoritative(false, false))
	assert.False(t, decideAuthoritative(false, true))
}

func TestAuthorize(t *testing.T) {
	svc, _, _ := newTestService(t, testConfig())

	tests := []struct {
		name    string
		isAdmin bool
		occ     session.Occupancy
		wantErr error
	}{
		{
			name:    "first admin",
			isAdmin: true,
			occ:     session.Occupancy{},
		},
		{
			name:    "second admin",
			isAdmin: true,
			occ:     session.Occupancy{Admins: 1, Total: 1, AdminEverJoined: true},
			wantErr: ErrAdminSeatTaken,
		},
		{
			name: "regular before admin ever joined",
			occ:  session.Occupancy{},

			wantErr: ErrWaitingForAdmin,
		},
		{
			name: "regular after admin joined",
			occ:  session.Occupancy{Admins: 1, Total: 1, AdminEverJoined: true},
		},
		{
			name: "regular while admin away",
			occ:  session.Occupancy{Regulars: 1, Total: 1, AdminEverJoined: true},
		},
		{
			name:    "regular limit",
			occ:     session.Occupancy{Admins: 1, Regulars: 2, Total: 3, AdminEverJoined: true},
			wantErr: ErrMembersLimit,
		},
		{
			name:    "admin against the global cap",
			isAdmin: true,
			occ:     session.Occupancy{Regulars: 3, Total: 3, AdminEverJoined: true},
			wantErr: ErrRoomFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.authorize(tt.isAdmin, tt.occ)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
