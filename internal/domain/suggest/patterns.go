package suggest

import "regexp"

// quickMatch is tested against the normalized header. First match wins, so
// entries are ordered most specific first.
type quickMatch struct {
	pattern *regexp.Regexp
	key     string
}

var quickMatches = []quickMatch{
	{regexp.MustCompile(`^(td|totaldistance|distancetotal)$`), "total_distance"},
	{regexp.MustCompile(`^(time|duration|minutesplayed|minplayed|vremya)$`), "duration"},
	{regexp.MustCompile(`^maxspeed(kmh)?$`), "max_speed"},
	{regexp.MustCompile(`^(hsr%|hsrpercent|hsrratio)$`), "hsr_percentage"},
	{regexp.MustCompile(`^(hsr|highspeedrunning)$`), "hsr_distance"},
	{regexp.MustCompile(`^(z3|tempo)$`), "distance_zone3"},
	{regexp.MustCompile(`^(z4|hir)$`), "distance_zone4"},
	{regexp.MustCompile(`^(z5|sprint)$`), "distance_zone5"},
	{regexp.MustCompile(`^sprints$`), "sprints_count"},
	{regexp.MustCompile(`^(mmin|avg|average)$`), "avg_speed"},
}

// zoneMatch is tested against the lowercased raw header. The single capture
// group is the zone number substituted into keyFormat.
type zoneMatch struct {
	pattern   *regexp.Regexp
	keyFormat string
}

var zoneMatchers = []zoneMatch{
	{regexp.MustCompile(`входы.*(?:зон\w*|з)\D*(\d)`), "speed_zone%d_entries"},
	{regexp.MustCompile(`entries.*zone\D*(\d)`), "speed_zone%d_entries"},
	{regexp.MustCompile(`ускорен\w*\D*(\d)`), "acc_zone%d_count"},
	{regexp.MustCompile(`acceleration\w*.*zone\D*(\d)`), "acc_zone%d_count"},
	{regexp.MustCompile(`торможен\w*\D*(\d)`), "dec_zone%d_count"},
	{regexp.MustCompile(`deceleration\w*.*zone\D*(\d)`), "dec_zone%d_count"},
	{regexp.MustCompile(`пульс\w*.*(?:зона|з)\D*(\d)`), "time_in_hr_zone%d"},
	{regexp.MustCompile(`hr.*zone\D*(\d)`), "time_in_hr_zone%d"},
	{regexp.MustCompile(`зона\D*(\d)`), "distance_zone%d"},
	{regexp.MustCompile(`zone\D*(\d)`), "distance_zone%d"},
	{regexp.MustCompile(`дист\w*.*з\D*(\d)`), "distance_zone%d"},
}

// metricMatch is tested against the lowercased raw header after the zone
// table. Specific metrics appear before the generic ones they overlap with.
type metricMatch struct {
	pattern *regexp.Regexp
	key     string
}

var metricMatchers = []metricMatch{
	{regexp.MustCompile(`hsr.*%|виб.*%|высокоинтенсивн\w*.*%`), "hsr_percentage"},
	{regexp.MustCompile(`high.*intensity|высокоинтенсивн|hsr|виб`), "hsr_distance"},
	{regexp.MustCompile(`дистанция.*в.*минуту|distance.*per.*minute|дист\w*.*мин`), "distance_per_min"},
	{regexp.MustCompile(`total.*dist\w*|общая.*дистанция|distance.*total|дистанция.*общая`), "total_distance"},
	{regexp.MustCompile(`max.*speed|максимальная.*скорость|peak.*speed|макс\w*.*скорость|max.*vel`), "max_speed"},
	{regexp.MustCompile(`avg.*speed|average.*speed|mean.*speed|средняя.*скорость|сред\w*.*скорость`), "avg_speed"},
	{regexp.MustCompile(`avg.*heart.*rate|average.*hr|mean.*hr|avg.*hr|средний.*пульс|сред\w*.*пульс`), "avg_heart_rate"},
	{regexp.MustCompile(`max.*heart.*rate|peak.*hr|max.*hr|максимальный.*пульс|макс\w*.*пульс`), "max_heart_rate"},
	{regexp.MustCompile(`time.*on.*field|playing.*time|duration|время.*на.*поле|игровое.*время|индивидуальное.*время|время`), "duration"},
	{regexp.MustCompile(`sprint|спринт`), "sprints_count"},
	{regexp.MustCompile(`player|name|игрок|имя`), "athlete_name"},
	{regexp.MustCompile(`position|позиция`), "position"},
}

// unitMatch proposes a display unit from the lowercased raw header. Compound
// units come before their substrings.
type unitMatch struct {
	pattern *regexp.Regexp
	unit    string
}

var unitMatchers = []unitMatch{
	{regexp.MustCompile(`км/ч|km/h|кмч`), "km/h"},
	{regexp.MustCompile(`м/с|m/s`), "m/s"},
	{regexp.MustCompile(`м/мин|m/min`), "m/min"},
	{regexp.MustCompile(`уд/мин|bpm|beats`), "bpm"},
	{regexp.MustCompile(`километр|kilometer|\bkm\b`), "km"},
	{regexp.MustCompile(`%|процент|percent`), "%"},
	{regexp.MustCompile(`минут|мин|\bmin\b`), "min"},
	{regexp.MustCompile(`секунд|сек|\bsec\b`), "s"},
	{regexp.MustCompile(`количество|число|шт|count|number`), "count"},
	{regexp.MustCompile(`метр|meter|\bm\b`), "m"},
}
