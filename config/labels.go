package config

// CarouselLabels maps language code to the field labels rendered in the
// property carousel and unit detail cards.
var CarouselLabels = map[string]map[string]string{
	"en": {
		"option":           "Option",
		"unit_id":          "Unit ID",
		"type":             "Type",
		"compound":         "Compound",
		"region":           "Region",
		"developer":        "Developer",
		"area":             "Area",
		"rooms":            "Rooms",
		"bathrooms":        "Bathrooms",
		"floor":            "Floor",
		"finishing":        "Finishing",
		"price":            "Price",
		"delivery":         "Delivery",
		"status":           "Status",
		"payment_plan":     "Payment Plan",
		"down_payment":     "Down Payment",
		"installment":      "Monthly Installment",
		"not_specified":    "Not specified",
		"price_on_request": "Price on request",
		"sqm":              "sqm",
		"egp":              "EGP",
	},
	"ar": {
		"option":           "خيار",
		"unit_id":          "رقم الوحدة",
		"type":             "النوع",
		"compound":         "الكمبوند",
		"region":           "المنطقة",
		"developer":        "المطور",
		"area":             "المساحة",
		"rooms":            "الغرف",
		"bathrooms":        "الحمامات",
		"floor":            "الدور",
		"finishing":        "التشطيب",
		"price":            "السعر",
		"delivery":         "التسليم",
		"status":           "الحالة",
		"payment_plan":     "خطة السداد",
		"down_payment":     "المقدم",
		"installment":      "القسط الشهري",
		"not_specified":    "غير محدد",
		"price_on_request": "السعر عند الطلب",
		"sqm":              "متر مربع",
		"egp":              "جنيه مصري",
	},
	"franco": {
		"option":           "Khiar",
		"unit_id":          "Ra2m el wa7da",
		"type":             "El no3",
		"compound":         "El compound",
		"region":           "El mante2a",
		"developer":        "El matawer",
		"area":             "El mesa7a",
		"rooms":            "El owad",
		"bathrooms":        "El 7amamat",
		"floor":            "El dor",
		"finishing":        "El tashteeb",
		"price":            "El se3r",
		"delivery":         "El tasleem",
		"status":           "El 7ala",
		"payment_plan":     "Khetet el daf3",
		"down_payment":     "El mo2adem",
		"installment":      "El 2est el shahry",
		"not_specified":    "Mesh mo7adad",
		"price_on_request": "El se3r 3and el talab",
		"sqm":              "metr morabba3",
		"egp":              "geneh masry",
	},
}

// Label looks up a carousel label with an English fallback.
func Label(language, key string) string {
	if m, ok := CarouselLabels[language]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return CarouselLabels["en"][key]
}

// AlternativeSearchPreamble is prepended when results come from a relaxed
// fuzzy search instead of the user's exact criteria.
var AlternativeSearchPreamble = map[string]string{
	"en":     "I couldn't find exact matches for your request, but here are some similar options you might like:",
	"ar":     "لم أجد نتائج مطابقة تماماً لطلبك، لكن إليك بعض الخيارات المشابهة التي قد تعجبك:",
	"franco": "Mal2etsh nataeg motabka tamaman le talabak, bas dol shewayet khyarat shabhha momken te3gebak:",
}

// NoResultsApology is used when even the fuzzy retry returned nothing.
var NoResultsApology = map[string]string{
	"en":     "I'm sorry, I couldn't find any properties matching your criteria, even after checking similar options. Could you try adjusting your requirements?",
	"ar":     "آسف، لم أجد أي عقارات تطابق معاييرك حتى بعد البحث عن خيارات مشابهة. هل يمكنك تعديل متطلباتك؟",
	"franco": "Ana asef, mal2etsh ay 3a2arat motabka le talabak 7atta ba3d ma dawart 3ala khyarat shabhha. Momken te3adel el matloob?",
}

// SafetyRefusal is the fixed answer for blocked queries, all languages.
const SafetyRefusal = "I cannot process this request due to safety guidelines."

// FrancoValueTranslations maps Arabic field values that come back from the
// lang_id=2 rows to their Franco-Arabic spellings, so Franco users never see
// Arabic script inside a carousel.
var FrancoValueTranslations = map[string]string{
	"شقة":         "Sha2a",
	"فيلا":        "Villa",
	"دوبلكس":      "Duplex",
	"بنتهاوس":     "Penthouse",
	"استوديو":     "Studio",
	"توين هاوس":   "Twin House",
	"تاون هاوس":   "Town House",
	"شاليه":       "Chalet",
	"مكتب":        "Maktab",
	"محل":         "Ma7al",
	"عيادة":       "3eyada",
	"متاح":        "Mota7",
	"متاحة":       "Mota7a",
	"تشطيب كامل":  "Tashteeb kamel",
	"نصف تشطيب":   "Nos tashteeb",
	"بدون تشطيب":  "Men gheir tashteeb",
	"على المحارة": "3ala el ma7ara",
	"سوبر لوكس":   "Super lux",
	"غير محدد":    "Mesh mo7adad",
}

// FrenchWordReplacements scrubs French vocabulary that translation models
// leak into Franco-Arabic output, with deterministic Franco substitutes.
var FrenchWordReplacements = map[string]string{
	"propriété":     "property",
	"propriétés":    "properties",
	"chambre":       "owd",
	"chambres":      "owad",
	"salle de bain": "7amam",
	"prix":          "se3r",
	"appartement":   "sha2a",
	"appartements":  "sho2a2",
	"étage":         "dor",
	"disponible":    "mota7",
	"disponibles":   "mota7a",
	"maison":        "beit",
	"surface":       "mesa7a",
	"trouvé":        "la2et",
	"trouvée":       "la2et",
	"voici":         "ahok",
	"bonjour":       "ahlan",
	"merci":         "shokran",
	"désolé":        "asef",
	"recherche":     "ba7s",
	"résultats":     "nataeg",
}
