package config

type DBDriver string

const (
	DBDriverMySQL    DBDriver = "mysql"
	DBDriverPostgres DBDriver = "postgres"
	DBDriverMSSQL    DBDriver = "mssql"
	DBDriverSQLite   DBDriver = "sqlite"
)

// DBConfig describes the single connection the bridge opens. Port and
// Database are optional; nil means absent.
type DBConfig struct {
	Driver   DBDriver `yaml:"driver" mapstructure:"driver" json:"driver,omitempty"`
	Host     string   `yaml:"host" mapstructure:"host" json:"host"`
	Port     *int     `yaml:"port,omitempty" mapstructure:"port" json:"port,omitempty"`
	Database *string  `yaml:"database,omitempty" mapstructure:"database" json:"database,omitempty"`
	Username string   `yaml:"username" mapstructure:"username" json:"username"`
	Password string   `yaml:"password,omitempty" mapstructure:"password" json:"password"`
}

// Server is a saved connection the console can pick from.
type Server struct {
	ID   string   `yaml:"id" mapstructure:"id" json:"id"`
	Name string   `yaml:"name" mapstructure:"name" json:"name"`
	DB   DBConfig `yaml:"db" mapstructure:"db" json:"db"`
}

type LogConfig struct {
	File       string `yaml:"file,omitempty" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" mapstructure:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups" mapstructure:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays" mapstructure:"maxAgeDays"`
}

type Config struct {
	APIListen      string    `yaml:"apiListen" mapstructure:"apiListen"`
	BearerToken    string    `yaml:"bearerToken" mapstructure:"bearerToken"`
	Debug          bool      `yaml:"debug" mapstructure:"debug"`
	ConnectOnStart bool      `yaml:"connectOnStart" mapstructure:"connectOnStart"`
	Log            LogConfig `yaml:"log" mapstructure:"log"`
	DB             DBConfig  `yaml:"db" mapstructure:"db"`
	Servers        []Server  `yaml:"servers,omitempty" mapstructure:"servers"`
}

func DBDriverValues() []DBDriver {
	return []DBDriver{DBDriverMySQL, DBDriverPostgres, DBDriverMSSQL, DBDriverSQLite}
}

func DBDriverOptions() []string {
	vals := DBDriverValues()
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}

func IsKnownDriver(d DBDriver) bool {
	for _, v := range DBDriverValues() {
		if v == d {
			return true
		}
	}
	return false
}

func Default() Config {
	return Config{
		APIListen: "127.0.0.1:8080",
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
		DB: DBConfig{
			Driver: DBDriverMySQL,
			Host:   "localhost",
		},
	}
}

// IntPtr and StringPtr build the optional DBConfig fields.
func IntPtr(v int) *int          { return &v }
func StringPtr(v string) *string { return &v }
