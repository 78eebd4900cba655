package domain

// DefaultLandmarks is the built-in lunar gazetteer.
func DefaultLandmarks() []Landmark {
	out := make([]Landmark, len(defaultLandmarks))
	copy(out, defaultLandmarks)
	return out
}

var defaultLandmarks = []Landmark{
	{Name: "Birkhoff", Lat: 56.98412698, Lon: -162.7863464},
	{Name: "Debye", Lat: 45.55555556, Lon: -166.0328698},
	{Name: "Jackson", Lat: 19.52380952, Lon: -164.8967552},
	{Name: "Korolev", Lat: -9.047619048, Lon: -159.6325327},
	{Name: "Klute", Lat: 1.111111111, Lon: -132.8175306},
	{Name: "Lorentz", Lat: 37.93650794, Lon: -94.07332491},
	{Name: "Grimaldi", Lat: -5.238095238, Lon: -67.54150864},
	{Name: "Mare Orientale", Lat: -19.84126984, Lon: -95.33586178},
	{Name: "Oceanus Procellarum", Lat: 16.34920635, Lon: -56.59502739},
	{Name: "Chandrayaan 1 site", Lat: -89.54, Lon: 0},
	{Name: "Chandrayaan 3 landing site", Lat: -70.9, Lon: 22.9},
	{Name: "Mare Humorum", Lat: -26.82539683, Lon: -47.90391909},
	{Name: "Schickardi", Lat: -43.01587302, Lon: -55.31731985},
	{Name: "Chang'e 5 landing site", Lat: 41.42857143, Lon: -63.78929625},
	{Name: "Apollo 15 landing site", Lat: 24.92063492, Lon: 3.98145807},
	{Name: "Apollo 12 landing site", Lat: -3.968253968, Lon: -23.25158028},
	{Name: "Apollo 4 landing site", Lat: -3.968253968, Lon: -17.19848293},
	{Name: "Mare Nubium", Lat: -20.47619048, Lon: -15.0560472},
	{Name: "Mare Frigoris", Lat: 57.93650794, Lon: -13.68394437},
	{Name: "Mare Imbrium", Lat: 37.3015873, Lon: -20.80235988},
	{Name: "Mare Serenitatis", Lat: 30.95238095, Lon: 20.89844079},
	{Name: "Apollo 17 landing site", Lat: 19.84126984, Lon: 31.03413401},
	{Name: "Apollo 16 landing site", Lat: -9.047619048, Lon: 15.58870628},
	{Name: "Luna 24", Lat: 12.22222222, Lon: 62.85208597},
	{Name: "Luna 20", Lat: 3.968253968, Lon: 56.43657817},
	{Name: "Luna 16", Lat: -1.428571429, Lon: 56.08933839},
	{Name: "Mare Nectaris", Lat: -17.61904762, Lon: 36.56974294},
	{Name: "Bel'kovich", Lat: 59.52380952, Lon: 81.89970501},
	{Name: "Lacus Temporis", Lat: 44.28571429, Lon: 67.80109566},
	{Name: "Mare Marginis", Lat: 12.53968254, Lon: 87.70332912},
	{Name: "Mare Smythii", Lat: -1.428571429, Lon: 86.03624105},
	{Name: "Mare Australe", Lat: -48.41269841, Lon: 91.52128108},
	{Name: "Endymion", Lat: 54.44444444, Lon: 51.60724821},
	{Name: "Milikan", Lat: 44.28571429, Lon: 126.1019806},
	{Name: "Mare Moscoviense", Lat: 26.82539683, Lon: 147.9915718},
	{Name: "Sharonov", Lat: 10.0, Lon: 161.9199326},
	{Name: "Mare Tsiolkovskiy", Lat: -20.79365079, Lon: 130.2166035},
	{Name: "Mare Ingenii", Lat: -33.17460317, Lon: 162.6464391},
}
