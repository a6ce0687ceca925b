package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gometeo/bot/internal/model"
)

// правило: набор ключевых слов и шаблон ответа.
// Порядок проверки фиксирован и является частью контракта:
// "cloudy" проверяется раньше "partly cloudy" и "overcast",
// так что до этих веток строка со словом "cloudy" не доходит.
type rule struct {
	keywords []string
	template string // плейсхолдеры: %[1]s - город, %[2]s - температура
}

var rules = []rule{
	{[]string{"sunny"}, "☀️ It's a bright sunny day in %[1]s! The temperature is %[2]s°C. Don't forget your sunglasses!"},
	{[]string{"cloudy"}, "☁️ It's cloudy in %[1]s right now. The temperature is %[2]s°C."},
	{[]string{"rain", "showers"}, "🌧 Rain is falling in %[1]s. The temperature is %[2]s°C. Grab an umbrella!"},
	{[]string{"snow"}, "❄️ Snow is falling in %[1]s! The temperature is %[2]s°C. Stay warm!"},
	{[]string{"windy"}, "💨 It's windy in %[1]s. The temperature is %[2]s°C. Hold on to your hat!"},
	{[]string{"storm", "thunderstorm"}, "⛈ A storm is raging in %[1]s. The temperature is %[2]s°C. Better stay indoors!"},
	{[]string{"fog"}, "🌫 Fog has settled over %[1]s. The temperature is %[2]s°C. Drive carefully!"},
	{[]string{"partly cloudy"}, "⛅️ It's partly cloudy in %[1]s. The temperature is %[2]s°C."},
	{[]string{"overcast"}, "🌥 The sky over %[1]s is overcast. The temperature is %[2]s°C."},
	{[]string{"mist"}, "🌁 A light mist hangs over %[1]s. The temperature is %[2]s°C."},
}

// Report превращает нормализованный ответ провайдера в текст для пользователя.
// Чистая функция: одинаковый вход - одинаковый выход.
func Report(r *model.WeatherReport) string {
	condition := strings.ToLower(r.Condition)
	temp := strconv.FormatFloat(r.TempC, 'f', -1, 64)

	for _, rl := range rules {
		for _, kw := range rl.keywords {
			if strings.Contains(condition, kw) {
				return fmt.Sprintf(rl.template, r.City, temp)
			}
		}
	}

	return fmt.Sprintf("Current Weather in %s:\n\n The temperature is %s°C with %s.", r.City, temp, r.Condition)
}
