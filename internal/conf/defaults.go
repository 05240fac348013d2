package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig sets the default values for the configuration parameters.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("webserver.listen", ":8080")
	viper.SetDefault("webserver.debug", false)

	viper.SetDefault("security.alloweddomain", "shopstack.asia")
	viper.SetDefault("security.redirecttohttps", false)

	viper.SetDefault("zoho.apidomain", "https://people.zoho.com")
	viper.SetDefault("zoho.accountsurl", "https://accounts.zoho.com")

	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.from", "noreply@shopstack.asia")

	viper.SetDefault("masterdata.cachettl", 5*time.Minute)
}
