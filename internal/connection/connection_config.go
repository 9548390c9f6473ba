package connection

// ConnectType selects where replica credentials come from.
type ConnectType int

const (
	WithCredential ConnectType = iota + 1
	WithEnv
	WithConnectionString
)

func (c ConnectType) String() string {
	switch c {
	case WithCredential:
		return "withCredential"
	case WithEnv:
		return "withEnv"
	case WithConnectionString:
		return "withConnectionString"
	default:
		return "unknown"
	}
}

type AuthConfig struct {
	connectType      ConnectType
	accessKey        string
	secretKey        string
	connectionString string
}

func NewCredentialAuth(accessKey, secretKey string) *AuthConfig {
	return &AuthConfig{connectType: WithCredential, accessKey: accessKey, secretKey: secretKey}
}

func NewEnvAuth() *AuthConfig {
	return &AuthConfig{connectType: WithEnv}
}

func NewConnectionStringAuth(connectionString string) *AuthConfig {
	return &AuthConfig{connectType: WithConnectionString, connectionString: connectionString}
}

func (a *AuthConfig) GetConnectType() ConnectType {
	return a.connectType
}

func (a *AuthConfig) GetAccessKey() string {
	return a.accessKey
}

func (a *AuthConfig) GetSecretKey() string {
	return a.secretKey
}

func (a *AuthConfig) GetConnectionString() string {
	return a.connectionString
}
