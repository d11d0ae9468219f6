package env

const (
	// Prefix is the prefix of every remesas environment variable
	Prefix = "REMESAS"

	// DBURLSuffix names the Postgres connection string variable
	DBURLSuffix = "_DB_URL"

	// RedisURLSuffix names the Redis connection URL variable
	RedisURLSuffix = "_REDIS_URL"
)
