package kb

import "github.com/signalsfoundry/globe-quiz/model"

// DefaultCountries returns the built-in quiz catalog. Coordinates are rough
// geographic centres; the slice is freshly allocated on every call.
func DefaultCountries() []model.Country {
	return []model.Country{
		{ID: "JP", Name: "Japan", NameJa: "日本", Region: "Asia", Subregion: "Eastern Asia", Coordinate: model.GeoCoordinate{Latitude: 36, Longitude: 138}, AreaKm2: 377975, Difficulty: model.DifficultyEasy},
		{ID: "CN", Name: "China", NameJa: "中国", Region: "Asia", Subregion: "Eastern Asia", Coordinate: model.GeoCoordinate{Latitude: 35, Longitude: 105}, AreaKm2: 9596961, Difficulty: model.DifficultyEasy},
		{ID: "KR", Name: "South Korea", NameJa: "韓国", Region: "Asia", Subregion: "Eastern Asia", Coordinate: model.GeoCoordinate{Latitude: 37, Longitude: 127.5}, AreaKm2: 100210, Difficulty: model.DifficultyMedium},
		{ID: "IN", Name: "India", NameJa: "インド", Region: "Asia", Subregion: "Southern Asia", Coordinate: model.GeoCoordinate{Latitude: 20, Longitude: 77}, AreaKm2: 3287263, Difficulty: model.DifficultyEasy},
		{ID: "TH", Name: "Thailand", NameJa: "タイ", Region: "Asia", Subregion: "Southeast Asia", Coordinate: model.GeoCoordinate{Latitude: 15, Longitude: 100}, AreaKm2: 513120, Difficulty: model.DifficultyMedium},
		{ID: "VN", Name: "Vietnam", NameJa: "ベトナム", Region: "Asia", Subregion: "Southeast Asia", Coordinate: model.GeoCoordinate{Latitude: 16.16, Longitude: 107.83}, AreaKm2: 331212, Difficulty: model.DifficultyMedium},
		{ID: "ID", Name: "Indonesia", NameJa: "インドネシア", Region: "Asia", Subregion: "Southeast Asia", Coordinate: model.GeoCoordinate{Latitude: -5, Longitude: 120}, AreaKm2: 1904569, Difficulty: model.DifficultyMedium},
		{ID: "MY", Name: "Malaysia", NameJa: "マレーシア", Region: "Asia", Subregion: "Southeast Asia", Coordinate: model.GeoCoordinate{Latitude: 2.5, Longitude: 112.5}, AreaKm2: 330803, Difficulty: model.DifficultyHard},
		{ID: "PH", Name: "Philippines", NameJa: "フィリピン", Region: "Asia", Subregion: "Southeast Asia", Coordinate: model.GeoCoordinate{Latitude: 13, Longitude: 122}, AreaKm2: 342353, Difficulty: model.DifficultyMedium},
		{ID: "SG", Name: "Singapore", NameJa: "シンガポール", Region: "Asia", Subregion: "Southeast Asia", Coordinate: model.GeoCoordinate{Latitude: 1.36, Longitude: 103.8}, AreaKm2: 728, Difficulty: model.DifficultyHard},
		{ID: "GB", Name: "United Kingdom", NameJa: "イギリス", Region: "Europe", Subregion: "Northern Europe", Coordinate: model.GeoCoordinate{Latitude: 54, Longitude: -2}, AreaKm2: 242495, Difficulty: model.DifficultyEasy},
		{ID: "FR", Name: "France", NameJa: "フランス", Region: "Europe", Subregion: "Western Europe", Coordinate: model.GeoCoordinate{Latitude: 46, Longitude: 2}, AreaKm2: 551695, Difficulty: model.DifficultyEasy},
		{ID: "DE", Name: "Germany", NameJa: "ドイツ", Region: "Europe", Subregion: "Western Europe", Coordinate: model.GeoCoordinate{Latitude: 51, Longitude: 9}, AreaKm2: 357114, Difficulty: model.DifficultyEasy},
		{ID: "IT", Name: "Italy", NameJa: "イタリア", Region: "Europe", Subregion: "Southern Europe", Coordinate: model.GeoCoordinate{Latitude: 42.83, Longitude: 12.83}, AreaKm2: 301336, Difficulty: model.DifficultyEasy},
		{ID: "ES", Name: "Spain", NameJa: "スペイン", Region: "Europe", Subregion: "Southern Europe", Coordinate: model.GeoCoordinate{Latitude: 40, Longitude: -4}, AreaKm2: 505992, Difficulty: model.DifficultyEasy},
		{ID: "RU", Name: "Russia", NameJa: "ロシア", Region: "Europe", Subregion: "Eastern Europe", Coordinate: model.GeoCoordinate{Latitude: 60, Longitude: 100}, AreaKm2: 17098242, Difficulty: model.DifficultyEasy},
		{ID: "PL", Name: "Poland", NameJa: "ポーランド", Region: "Europe", Subregion: "Eastern Europe", Coordinate: model.GeoCoordinate{Latitude: 52, Longitude: 20}, AreaKm2: 312679, Difficulty: model.DifficultyMedium},
		{ID: "NL", Name: "Netherlands", NameJa: "オランダ", Region: "Europe", Subregion: "Western Europe", Coordinate: model.GeoCoordinate{Latitude: 52.5, Longitude: 5.75}, AreaKm2: 41850, Difficulty: model.DifficultyMedium},
		{ID: "CH", Name: "Switzerland", NameJa: "スイス", Region: "Europe", Subregion: "Western Europe", Coordinate: model.GeoCoordinate{Latitude: 47, Longitude: 8}, AreaKm2: 41284, Difficulty: model.DifficultyMedium},
		{ID: "SE", Name: "Sweden", NameJa: "スウェーデン", Region: "Europe", Subregion: "Northern Europe", Coordinate: model.GeoCoordinate{Latitude: 62, Longitude: 15}, AreaKm2: 450295, Difficulty: model.DifficultyMedium},
		{ID: "US", Name: "United States", NameJa: "アメリカ", Region: "Americas", Subregion: "Northern America", Coordinate: model.GeoCoordinate{Latitude: 38, Longitude: -97}, AreaKm2: 9833517, Difficulty: model.DifficultyEasy},
		{ID: "CA", Name: "Canada", NameJa: "カナダ", Region: "Americas", Subregion: "Northern America", Coordinate: model.GeoCoordinate{Latitude: 60, Longitude: -95}, AreaKm2: 9984670, Difficulty: model.DifficultyEasy},
		{ID: "MX", Name: "Mexico", NameJa: "メキシコ", Region: "Americas", Subregion: "Central America", Coordinate: model.GeoCoordinate{Latitude: 23, Longitude: -102}, AreaKm2: 1964375, Difficulty: model.DifficultyEasy},
		{ID: "BR", Name: "Brazil", NameJa: "ブラジル", Region: "Americas", Subregion: "South America", Coordinate: model.GeoCoordinate{Latitude: -10, Longitude: -55}, AreaKm2: 8515767, Difficulty: model.DifficultyEasy},
		{ID: "AR", Name: "Argentina", NameJa: "アルゼンチン", Region: "Americas", Subregion: "South America", Coordinate: model.GeoCoordinate{Latitude: -34, Longitude: -64}, AreaKm2: 2780400, Difficulty: model.DifficultyMedium},
		{ID: "CL", Name: "Chile", NameJa: "チリ", Region: "Americas", Subregion: "South America", Coordinate: model.GeoCoordinate{Latitude: -30, Longitude: -71}, AreaKm2: 756102, Difficulty: model.DifficultyEasy},
		{ID: "PE", Name: "Peru", NameJa: "ペルー", Region: "Americas", Subregion: "South America", Coordinate: model.GeoCoordinate{Latitude: -10, Longitude: -76}, AreaKm2: 1285216, Difficulty: model.DifficultyMedium},
		{ID: "CO", Name: "Colombia", NameJa: "コロンビア", Region: "Americas", Subregion: "South America", Coordinate: model.GeoCoordinate{Latitude: 4, Longitude: -72}, AreaKm2: 1141748, Difficulty: model.DifficultyMedium},
		{ID: "EG", Name: "Egypt", NameJa: "エジプト", Region: "Africa", Subregion: "Northern Africa", Coordinate: model.GeoCoordinate{Latitude: 27, Longitude: 30}, AreaKm2: 1002450, Difficulty: model.DifficultyEasy},
		{ID: "ZA", Name: "South Africa", NameJa: "南アフリカ", Region: "Africa", Subregion: "Southern Africa", Coordinate: model.GeoCoordinate{Latitude: -29, Longitude: 24}, AreaKm2: 1221037, Difficulty: model.DifficultyMedium},
		{ID: "NG", Name: "Nigeria", NameJa: "ナイジェリア", Region: "Africa", Subregion: "Western Africa", Coordinate: model.GeoCoordinate{Latitude: 10, Longitude: 8}, AreaKm2: 923768, Difficulty: model.DifficultyHard},
		{ID: "KE", Name: "Kenya", NameJa: "ケニア", Region: "Africa", Subregion: "Eastern Africa", Coordinate: model.GeoCoordinate{Latitude: -1, Longitude: 38}, AreaKm2: 580367, Difficulty: model.DifficultyMedium},
		{ID: "MA", Name: "Morocco", NameJa: "モロッコ", Region: "Africa", Subregion: "Northern Africa", Coordinate: model.GeoCoordinate{Latitude: 32, Longitude: -5}, AreaKm2: 446550, Difficulty: model.DifficultyMedium},
		{ID: "AU", Name: "Australia", NameJa: "オーストラリア", Region: "Oceania", Subregion: "Australia and New Zealand", Coordinate: model.GeoCoordinate{Latitude: -27, Longitude: 133}, AreaKm2: 7692024, Difficulty: model.DifficultyEasy},
		{ID: "NZ", Name: "New Zealand", NameJa: "ニュージーランド", Region: "Oceania", Subregion: "Australia and New Zealand", Coordinate: model.GeoCoordinate{Latitude: -41, Longitude: 174}, AreaKm2: 270467, Difficulty: model.DifficultyEasy},
		{ID: "SA", Name: "Saudi Arabia", NameJa: "サウジアラビア", Region: "Asia", Subregion: "Western Asia", Coordinate: model.GeoCoordinate{Latitude: 25, Longitude: 45}, AreaKm2: 2149690, Difficulty: model.DifficultyMedium},
		{ID: "TR", Name: "Turkey", NameJa: "トルコ", Region: "Asia", Subregion: "Western Asia", Coordinate: model.GeoCoordinate{Latitude: 39, Longitude: 35}, AreaKm2: 783562, Difficulty: model.DifficultyMedium},
		{ID: "IL", Name: "Israel", NameJa: "イスラエル", Region: "Asia", Subregion: "Western Asia", Coordinate: model.GeoCoordinate{Latitude: 31, Longitude: 35}, AreaKm2: 20770, Difficulty: model.DifficultyHard},
	}
}
