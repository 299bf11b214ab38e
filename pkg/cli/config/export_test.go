package config

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, sqliteDSN string) *Repository {
	return &Repository{
		backend:   backend,
		projectID: projectID,
		sqliteDSN: sqliteDSN,
	}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, bucket, publicBaseURL string) *Storage {
	return &Storage{
		backend:       backend,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewSchemaForTest creates a Schema config for testing purposes
func NewSchemaForTest(path string) *Schema {
	return &Schema{path: path}
}
