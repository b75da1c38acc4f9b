package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

const (
	defaultAppPort      = "8080"
	defaultAppEnv       = "local"
	defaultMongoURI     = "mongodb://localhost:27017"
	defaultMongoDB      = "maalgodam"
	defaultItemsColl    = "items"
	defaultRedisAddr    = "localhost:6379"
	defaultKafkaTopic   = "inventory.stock"
	defaultStorageDisk  = "local"
	defaultStorageRoot  = "storage"
	defaultStorageURL   = "http://localhost:8080/storage"
	defaultUploadFolder = "inventory"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges defaults with config/app.json and .env. Safe to call from
// every accessor; the actual file read happens once.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":           defaultAppPort,
		"APP_ENV":            defaultAppEnv,
		"MONGO_URI":          defaultMongoURI,
		"MONGO_DB":           defaultMongoDB,
		"MONGO_ITEMS_COLL":   defaultItemsColl,
		"REDIS_ADDR":         defaultRedisAddr,
		"REDIS_PASSWORD":     "",
		"KAFKA_BROKERS":      "",
		"KAFKA_TOPIC":        defaultKafkaTopic,
		"STORAGE_DISK":       defaultStorageDisk,
		"STORAGE_LOCAL_ROOT": defaultStorageRoot,
		"STORAGE_URL":        defaultStorageURL,
		"UPLOAD_FOLDER":      defaultUploadFolder,
	}
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDB() string {
	_ = Load()
	return get("MONGO_DB", defaultMongoDB)
}

func MongoItemsCollection() string {
	_ = Load()
	return get("MONGO_ITEMS_COLL", defaultItemsColl)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// KafkaBrokers returns the configured broker list. An empty list means
// event publication is disabled.
func KafkaBrokers() []string {
	_ = Load()
	raw := get("KAFKA_BROKERS", "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func KafkaTopic() string {
	_ = Load()
	return get("KAFKA_TOPIC", defaultKafkaTopic)
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDisk() string      { _ = Load(); return get("STORAGE_DISK", defaultStorageDisk) }
func StorageLocalRoot() string { _ = Load(); return get("STORAGE_LOCAL_ROOT", defaultStorageRoot) }
func StorageURL() string       { _ = Load(); return get("STORAGE_URL", defaultStorageURL) }
func UploadFolder() string     { _ = Load(); return get("UPLOAD_FOLDER", defaultUploadFolder) }

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
