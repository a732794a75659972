package search

// DefaultSynonyms は既定のオランダ語/英語シノニム表を返す。
// アプリの利用者がオランダ語で検索しても英語表記のレシピがヒットするように
// （またその逆も）手作業で整備したもの。対応は非対称で、1ホップのみ展開される。
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		// 肉・魚
		"kip":      {"chicken", "poultry"},
		"chicken":  {"kip"},
		"rund":     {"beef", "rundvlees"},
		"beef":     {"rund", "rundvlees"},
		"varken":   {"pork", "varkensvlees"},
		"pork":     {"varken"},
		"gehakt":   {"minced meat", "ground beef"},
		"vis":      {"fish"},
		"fish":     {"vis"},
		"zalm":     {"salmon"},
		"salmon":   {"zalm"},
		"garnalen": {"shrimp", "prawns"},
		"shrimp":   {"garnalen"},

		// 野菜・主食
		"aardappel": {"potato"},
		"potato":    {"aardappel"},
		"ui":        {"onion"},
		"onion":     {"ui"},
		"knoflook":  {"garlic"},
		"garlic":    {"knoflook"},
		"rijst":     {"rice"},
		"rice":      {"rijst"},
		"kaas":      {"cheese"},
		"cheese":    {"kaas"},
		"ei":        {"egg", "eieren"},
		"egg":       {"ei"},
		"champignon": {"mushroom", "paddenstoel"},
		"mushroom":   {"champignon"},

		// 料理・カテゴリ
		"soep":     {"soup"},
		"soup":     {"soep"},
		"salade":   {"salad"},
		"salad":    {"salade"},
		"toetje":   {"dessert", "nagerecht"},
		"dessert":  {"toetje", "nagerecht"},
		"ontbijt":  {"breakfast"},
		"breakfast": {"ontbijt"},
		"avondeten": {"dinner"},
		"dinner":    {"avondeten"},
		"broodje":   {"sandwich"},
		"sandwich":  {"broodje"},
		"pannenkoek": {"pancake"},
		"pancake":    {"pannenkoek"},
	}
}
