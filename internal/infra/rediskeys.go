package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "los"
)

// Ключи для кэша аналитики (короткий TTL, чтобы не гонять тяжелые запросы в Postgres)
const (
	RedisKeyStatusCount  = RedisNamespace + ":stats:status_count"
	RedisKeyTopCustomers = RedisNamespace + ":stats:top_customers"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanDecisions — канал трансляции терминальных решений по заявкам.
	// Формат payload: "loan_id:STATUS". Потребители — внешние дашборды.
	RedisChanDecisions = RedisNamespace + ":loans:decision-signal"
)
