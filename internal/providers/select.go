package providers

import (
	"strconv"
	"strings"
)

// Filter narrows a catalog for display. chapter matches a title or a 1-based
// position, rng is "start-end" and list is "1,3,5". The first non-empty
// selector wins; with none set the whole catalog is returned.
func Filter(all []Chapter, chapter, rng, list string) []Chapter {
	if chapter != "" {
		byTitle := FilterByTitle(all, chapter)
		if len(byTitle) > 0 {
			return byTitle
		}

		if idx, err := strconv.Atoi(chapter); err == nil {
			if idx > 0 && idx <= len(all) {
				return []Chapter{all[idx-1]}
			}
		}

		return nil
	}

	if rng != "" {
		return FilterRange(all, rng)
	}
	if list != "" {
		return FilterList(all, list)
	}

	return all
}

func FilterByTitle(all []Chapter, title string) []Chapter {
	out := []Chapter{}
	for _, c := range all {
		if strings.EqualFold(strings.TrimSpace(c.Title), strings.TrimSpace(title)) {
			out = append(out, c)
		}
	}

	return out
}

func FilterRange(all []Chapter, rng string) []Chapter {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil
	}

	start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))

	if err1 != nil || err2 != nil {
		return nil
	}
	if start <= 0 || end <= 0 || start > end || end > len(all) {
		return nil
	}

	return all[start-1 : end]
}

func FilterList(all []Chapter, list string) []Chapter {
	var out []Chapter
	parts := strings.SplitSeq(list, ",")

	for p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		idx, err := strconv.Atoi(p)
		if err != nil || idx <= 0 || idx > len(all) {
			continue
		}

		out = append(out, all[idx-1])
	}

	return out
}
