package scheduling

// NewMockDB exposes the sqlmock backed gorm handle to the external test package.
var NewMockDB = newMockDB
