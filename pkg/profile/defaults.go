package profile

const (
	zhText = `（中央社）迎接虎年到來，台北101今天表示，即日起推出「虎年新春燈光秀」，將持續至2月5日，每晚6時至10時，除整點會有報時燈光變化外，每15分鐘還會有3分鐘的燈光秀。台北101下午透過新聞稿表示，今年特別設計「虎年新春燈光秀」，從今晚開始閃耀台北天際線，一直延續至2月5日，共7天。`

	enText = `(CNN) Not all Lunar New Year foods are created equal. Some only make a brief appearance at the festival for auspicious purposes. Others are so delicious they grace dim sum tables around the world all year.
Turnip cake -- called "loh bak goh" in Cantonese -- falls into the latter category.
Chef Tsang Chiu King, culinary director of Ming Court in Hong Kong's Wan Chai area, has his own theory on why turnip cake is such a popular Lunar New Year dish, especially in southern China.
"Compared to other Lunar New Year cakes, turnip cake is popular as it's one of the few savory new year puddings. Together with the freshness of the white radish, it can be quite addictive as a snack or a main dish," he says.`

	jaText = `（朝日新聞）寅（とら）年の2022年を前に、90種480匹の野生動物を飼育する「到津（いとうづ）の森公園」（北九州市）が盛り上がっている。同園のマスコットはアムールトラのミライ（雌、10歳）。22年は「ニャーニャー」の年としてネコ好きの間で話題となっており、「干支（えと）で唯一のネコ科のトラ人気につながれば」と期待している。`
)

// DefaultProfiles returns the built-in language profiles.
func DefaultProfiles() []LanguageProfile {
	return []LanguageProfile{
		{
			Key:            Chinese,
			DisplayName:    "中文",
			PipelineID:     "zh_gse",
			DefaultText:    zhText,
			DefaultPattern: `\d{2,4}[\x{4E00}-\x{9FFF}]+`,
			Tokenizers:     []string{"native", "jieba"},
		},
		{
			Key:            English,
			DisplayName:    "English",
			PipelineID:     "en_prose",
			DefaultText:    enText,
			DefaultPattern: `(ed|ing)$`,
			Tokenizers:     []string{"native"},
		},
		{
			Key:            Japanese,
			DisplayName:    "日本語",
			PipelineID:     "ja_kagome_ipa",
			DefaultText:    jaText,
			DefaultPattern: `[たい]$`,
			Tokenizers:     []string{"native"},
		},
	}
}

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	t, err := NewTable(DefaultProfiles())
	if err != nil {
		panic(err)
	}
	return t
}
