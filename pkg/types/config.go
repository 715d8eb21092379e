package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"production"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"public"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`

	// Uploads
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxUploadMB    int64  `envconfig:"MAX_UPLOAD_MB" default:"10"`
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"local"` // local or s3
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Prefix       string `envconfig:"S3_PREFIX"`
	S3EndpointURL  string `envconfig:"S3_ENDPOINT_URL"` // S3 compatible providers, forces path style

	// Token verification. JWKSURL wins over JWTSecret when both are set.
	JWTSecret string `envconfig:"JWT_SECRET"`
	JWKSURL   string `envconfig:"JWKS_URL"`

	// Cognito Auth
	CognitoClientID string `envconfig:"COGNITO_CLIENT_ID"`

	// Auth Configuration
	CookieName string `envconfig:"SESSION_COOKIE_NAME" default:"familyhub_token"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Roles allowed to mutate each entity family
	ContributionRoles []string `envconfig:"CONTRIBUTION_ROLES" default:"admin,treasurer"`
	EventRoles        []string `envconfig:"EVENT_ROLES" default:"admin,secretary,treasurer"`
	SessionRoles      []string `envconfig:"SESSION_ROLES" default:"admin,treasurer"`
	DocumentRoles     []string `envconfig:"DOCUMENT_ROLES" default:"admin,secretary"`
	FamilyTreeRoles   []string `envconfig:"FAMILY_TREE_ROLES" default:"admin,secretary"`
	MemberRoles       []string `envconfig:"MEMBER_ROLES" default:"admin"`
	AuditRoles        []string `envconfig:"AUDIT_ROLES" default:"admin"`
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
