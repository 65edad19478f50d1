package analyst

import (
	"strconv"

	"golang.org/x/text/language"
)

// catalog holds the narrative templates for one locale.
type catalog struct {
	months [12]string

	trendUp, trendDown, trendFlat          string
	peakMonths, noPeak, lowMonths          string
	forecastUp, forecastDown, forecastFlat string
	actCapacity, actCampaign, actVolatile  string

	leadNoData, leadShort, leadMedium, leadLong string
	volLow, volMedium, volHigh, volNoData       string
	actAltSupplier, actRenegotiate, actSafety   string
}

var english = catalog{
	months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},

	trendUp:      "Sales are trending up (about %.1f%% change).",
	trendDown:    "Sales are trending down (about %.1f%% change).",
	trendFlat:    "Sales are broadly flat.",
	peakMonths:   "Demand peaks in: %s.",
	noPeak:       "No clear seasonal peak detected.",
	lowMonths:    " Low-demand months: %s.",
	forecastUp:   "Trend is up; plan production and stock for rising demand.",
	forecastDown: "Trend is down; watch volumes for stock build-up and discount pressure.",
	forecastFlat: "Trend is flat; current capacity and stock look sufficient.",
	actCapacity:  "Secure capacity and supply for high-performing products.",
	actCampaign:  "Review campaigns, packaging or product mix for declining products.",
	actVolatile:  "Demand swings are large; set a safety-stock policy and a flexible production plan.",

	leadNoData:     "Not enough lead time data to assess delivery performance.",
	leadShort:      "Average lead time is about %.1f days, which is reasonable.",
	leadMedium:     "Average lead time is %.1f days; review safety stock for critical products.",
	leadLong:       "Average lead time exceeds %.1f days; supply risk is serious.",
	volLow:         "Unit price volatility is low overall.",
	volMedium:      "Unit price volatility is moderate; review contract terms with critical suppliers.",
	volHigh:        "Unit prices show high volatility; contracts and an alternative supplier strategy are needed.",
	volNoData:      "Not enough data to assess price volatility.",
	actAltSupplier: "Start sourcing alternative suppliers for critical materials with long lead times.",
	actRenegotiate: "Renegotiate contract, price and delivery terms with high-risk suppliers.",
	actSafety:      "Set safety stock levels for materials with long lead times.",
}

var turkish = catalog{
	months: [12]string{
		"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
		"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
	},

	trendUp:      "Satış trendi yükseliyor (yaklaşık %%%.1f değişim).",
	trendDown:    "Satış trendi düşüyor (yaklaşık %%%.1f değişim).",
	trendFlat:    "Satış trendi genel olarak yatay seyrediyor.",
	peakMonths:   "Talep özellikle şu aylarda yükseliyor: %s.",
	noPeak:       "Belirgin bir mevsimsellik zirvesi tespit edilmedi.",
	lowMonths:    " Düşük talep dönemleri: %s.",
	forecastUp:   "Trend yukarı; üretim ve stok planlamasında artan talep senaryosuna göre hareket edilmesi gerekiyor.",
	forecastDown: "Trend aşağı; stok birikimi ve iskontolu satış riskine karşı hacimlere dikkat edilmeli.",
	forecastFlat: "Trend yatay; mevcut kapasite ve stok seviyesi çoğunlukla yeterli görünüyor.",
	actCapacity:  "Yüksek performanslı ürünlerde kapasite ve tedarik güvence altına alın.",
	actCampaign:  "Düşen ürünlerde kampanya, paketleme veya ürün karması revizyonu düşünülmeli.",
	actVolatile:  "Talep dalgalanmaları yüksek; güvenli stok politikası ve esnek üretim planı kurgulanmalı.",

	leadNoData:     "Lead time verisi yetersiz; teslimat performansı analiz edilemiyor.",
	leadShort:      "Ortalama lead time yaklaşık %.1f gün, oldukça makul.",
	leadMedium:     "Ortalama lead time %.1f gün seviyesinde; kritik ürünler için güvenli stok gözden geçirilmeli.",
	leadLong:       "Ortalama lead time %.1f günü aşıyor; ciddi tedarik riski var.",
	volLow:         "Genel olarak birim fiyatlarda volatilite düşük.",
	volMedium:      "Birim fiyat volatilitesi orta seviyede; kritik tedarikçilerle kontrat şartları gözden geçirilebilir.",
	volHigh:        "Birim fiyatlarda yüksek oynaklık var; sözleşme ve alternatif tedarikçi stratejisi gerekiyor.",
	volNoData:      "Fiyat volatilitesi için yeterli veri yok.",
	actAltSupplier: "Uzun lead time'a sahip kritik malzemeler için alternatif tedarikçi arayışı başlatılmalı.",
	actRenegotiate: "Yüksek risk skoruna sahip tedarikçilerle sözleşme, fiyat ve teslimat şartları yeniden müzakere edilmeli.",
	actSafety:      "Lead time'ı uzun olan malzemeler için güvenli stok seviyeleri netleştirilmeli.",
}

var (
	supported = []language.Tag{language.English, language.Turkish}
	catalogs  = []*catalog{&english, &turkish}
	matcher   = language.NewMatcher(supported)
)

// catalogFor picks the closest supported locale, defaulting to English.
func catalogFor(locale string) *catalog {
	tag, err := language.Parse(locale)
	if err != nil {
		return &english
	}
	_, i, conf := matcher.Match(tag)
	if conf == language.No {
		return &english
	}
	return catalogs[i]
}

// MonthName returns the localized name of a month (1-12). Out-of-range
// values are rendered as numbers.
func MonthName(locale string, month int) string {
	if month < 1 || month > 12 {
		return strconv.Itoa(month)
	}
	return catalogFor(locale).months[month-1]
}
