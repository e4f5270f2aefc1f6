package store

// UserSettings holds a user's scheduling preferences.
type UserSettings struct {
	UserID    int32
	UpdatedTs int64

	// Timezone is an IANA identifier, e.g. "Asia/Bangkok".
	Timezone string
	// DayStart and DayEnd bound the working-hours window, "HH:MM".
	DayStart string
	DayEnd   string
	// BufferMinutes is the buffer applied around events, >= 0.
	BufferMinutes int
}

// FindUserSettings is the find condition for user settings.
type FindUserSettings struct {
	UserID int32
}

// UpsertUserSettings is the upsert request for user settings.
type UpsertUserSettings struct {
	UserID        int32
	Timezone      *string
	DayStart      *string
	DayEnd        *string
	BufferMinutes *int
}
