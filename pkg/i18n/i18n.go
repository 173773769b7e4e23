// Package i18n holds the translated display strings and the language
// selection rules for rendered projections.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys of the display catalog.
const (
	MsgSetupTitle           = "setup.title"
	MsgSetupAmount          = "setup.amount"
	MsgSetupTimeframe       = "setup.timeframe"
	MsgSetupPrice           = "setup.price"
	MsgSetupFallbackPrice   = "setup.price.fallback"
	MsgSetupStaticPrice     = "setup.price.static"
	MsgSetupInflation       = "setup.inflation"
	MsgSetupGrowth          = "setup.growth"
	MsgMeaningTitle         = "meaning.title"
	MsgMeaningNow           = "meaning.now"
	MsgMeaningLater         = "meaning.later"
	MsgMeaningMore          = "meaning.more"
	MsgMeaningFewer         = "meaning.fewer"
	MsgFiatTitle            = "fiat.title"
	MsgFiatAfterInflation   = "fiat.after"
	MsgFiatReduced          = "fiat.reduced"
	MsgFiatLoss             = "fiat.loss"
	MsgPowerTitle           = "power.title"
	MsgPowerCost            = "power.cost"
	MsgPowerLoss            = "power.loss"
	MsgInsightTitle         = "insight.title"
	MsgConfidenceTitle      = "confidence.title"
	MsgConfidenceBasis      = "confidence.basis"
	MsgConfidenceDisclaim   = "confidence.disclaimer"
	MsgChartTitle           = "chart.title"
	MsgChartAsset           = "chart.asset"
	MsgChartFiat            = "chart.fiat"
	MsgFallbackNotice       = "notice.fallback"
	MsgErrorInvalidInput    = "error.invalid"
	MsgErrorUnknownCurrency = "error.currency"
)

type entry struct {
	key string
	en  string
	es  string
}

var entries = []entry{
	{MsgSetupTitle, "### Your Setup", "### Tu configuración"},
	{MsgSetupAmount, "- You entered: %s", "- Ingresaste: %s"},
	{MsgSetupTimeframe, "- Timeframe: %s", "- Plazo: %s"},
	{MsgSetupPrice, "- Live %s price: %s", "- Precio de %s en vivo: %s"},
	{MsgSetupStaticPrice, "- Configured %s price: %s", "- Precio configurado de %s: %s"},
	{MsgSetupFallbackPrice, "- %s price (fallback, live price unavailable): %s", "- Precio de %s (respaldo, precio en vivo no disponible): %s"},
	{MsgSetupInflation, "- Inflation rate: %s", "- Tasa de inflación: %s"},
	{MsgSetupGrowth, "- %s growth assumption: %s/yr", "- Crecimiento asumido de %s: %s/año"},
	{MsgMeaningTitle, "### What This Means", "### Qué significa"},
	{MsgMeaningNow, "- %s you could buy today: %s %s (%s %s)", "- %s que podrías comprar hoy: %s %s (%s %s)"},
	{MsgMeaningLater, "- %s you could buy in %s: %s %s (%s %s)", "- %s que podrías comprar en %s: %s %s (%s %s)"},
	{MsgMeaningMore, "- Buying now gives you ≈ %s %s more", "- Comprar ahora te da ≈ %s %s más"},
	{MsgMeaningFewer, "- Buying now gives you ≈ %s %s fewer", "- Comprar ahora te da ≈ %s %s menos"},
	{MsgFiatTitle, "### %s Projection", "### Proyección en %s"},
	{MsgFiatAfterInflation, "- Your %s after inflation: %s", "- Tus %s después de la inflación: %s"},
	{MsgFiatReduced, "- Inflation reduced your %s to ≈ %s", "- La inflación redujo tus %s a ≈ %s"},
	{MsgFiatLoss, "- That's a projected loss of ≈ %s", "- Es una pérdida proyectada de ≈ %s"},
	{MsgPowerTitle, "### Purchasing Power", "### Poder adquisitivo"},
	{MsgPowerCost, "- What costs %s today may cost %s in %s", "- Lo que hoy cuesta %s podría costar %s en %s"},
	{MsgPowerLoss, "- Your buying power loss = %s", "- Tu pérdida de poder adquisitivo = %s"},
	{MsgInsightTitle, "### Market Insight", "### Perspectiva del mercado"},
	{MsgConfidenceTitle, "### Confidence Meter", "### Medidor de confianza"},
	{MsgConfidenceBasis, "Based on historical %s growth (%s/year) and current inflation.", "Basado en el crecimiento histórico de %s (%s/año) y la inflación actual."},
	{MsgConfidenceDisclaim, "While past performance is no guarantee, it offers insight into future trends.", "Aunque el rendimiento pasado no es garantía, ofrece una idea de las tendencias futuras."},
	{MsgChartTitle, "Projected Value in %s", "Valor proyectado en %s"},
	{MsgChartAsset, "Future (%s)", "Futuro (%s)"},
	{MsgChartFiat, "Future (Cash)", "Futuro (efectivo)"},
	{MsgFallbackNotice, "Note: the live %s price could not be fetched; a fallback price of %s was used.", "Nota: no se pudo obtener el precio en vivo de %s; se usó un precio de respaldo de %s."},
	{MsgErrorInvalidInput, "Invalid input: %s", "Entrada inválida: %s"},
	{MsgErrorUnknownCurrency, "Unsupported currency: %s", "Moneda no soportada: %s"},
}

var supported = []language.Tag{language.English, language.Spanish}

var (
	messages = buildCatalog()
	matcher  = language.NewMatcher(supported)
)

func buildCatalog() catalog.Catalog {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, e := range entries {
		if err := builder.SetString(language.English, e.key, e.en); err != nil {
			panic(fmt.Sprintf("i18n: register %s (en): %v", e.key, err))
		}
		if err := builder.SetString(language.Spanish, e.key, e.es); err != nil {
			panic(fmt.Sprintf("i18n: register %s (es): %v", e.key, err))
		}
	}
	return builder
}

// Supported returns the languages output can be rendered in.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Default returns the default output language.
func Default() language.Tag {
	return language.English
}

// Printer returns a printer that translates message keys and localizes
// number formatting for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(Match(tag), message.Catalog(messages))
}

// Match maps any tag onto the closest supported language.
func Match(tag language.Tag) language.Tag {
	_, index, _ := matcher.Match(tag)
	return supported[index]
}

// ParseLocale accepts BCP 47 tags ("en", "es-MX") as well as the language
// plain language names ("English", "Español").
func ParseLocale(value string) (language.Tag, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "":
		return Default(), nil
	case "english":
		return language.English, nil
	case "español", "espanol", "spanish":
		return language.Spanish, nil
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		return language.Und, fmt.Errorf("unsupported locale %q: %w", value, err)
	}
	_, _, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.Und, fmt.Errorf("unsupported locale %q", value)
	}
	return Match(tag), nil
}

// ResolveAcceptLanguage picks the best supported language from an HTTP
// Accept-Language header, falling back to the default.
func ResolveAcceptLanguage(header string) language.Tag {
	if strings.TrimSpace(header) == "" {
		return Default()
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default()
	}
	return supported[index]
}
