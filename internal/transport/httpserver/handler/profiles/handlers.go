package profiles

import (
	profilesdomain "telicommunity-go/internal/domain/profiles"
	"telicommunity-go/pkg/logger"
)

// maxAvatarBytes bounds the decoded avatar accepted by PUT /profiles/me.
const maxAvatarBytes = 5 << 20

type Handlers struct {
	Profiles *profilesdomain.Service
	log      logger.Logger
}

func New(profiles *profilesdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Profiles: profiles,
		log:      log,
	}
}
