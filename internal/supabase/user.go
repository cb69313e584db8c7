package supabase

type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

type userResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Sub          string                 `json:"sub"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	User         struct {
		ID  string `json:"id"`
		Sub string `json:"sub"`
	} `json:"user"`
}

func (p userResponse) toUser() (User, bool) {
	userID := firstNonEmpty(p.ID, p.Sub, p.User.ID, p.User.Sub)
	if userID == "" {
		return User{}, false
	}
	return User{
		ID:        userID,
		Email:     p.Email,
		Name:      firstNonEmpty(stringFromMap(p.UserMetadata, "full_name"), stringFromMap(p.UserMetadata, "name")),
		AvatarURL: firstNonEmpty(stringFromMap(p.UserMetadata, "avatar_url"), stringFromMap(p.UserMetadata, "picture")),
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func stringFromMap(values map[string]interface{}, key string) string {
	if values == nil {
		return ""
	}
	value, ok := values[key]
	if !ok {
		return ""
	}
	parsed, ok := value.(string)
	if !ok {
		return ""
	}
	return parsed
}
