package render

import (
	"fmt"
	"io"
	"strings"
)

// Title is the heading printed above the widget
const Title = "Application Météo"

// WriteText renders v for a terminal
func WriteText(w io.Writer, v View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", Title)
	fmt.Fprintf(&b, "[ %s ]\n", v.Input)

	if len(v.Favorites) > 0 {
		b.WriteString("Favoris :")
		for i, city := range v.Favorites {
			fmt.Fprintf(&b, "  %d) %s", i+1, city)
		}
		b.WriteString("\n")
	}

	if v.Loading {
		b.WriteString("… Chargement\n")
	}

	if v.Error != "" {
		fmt.Fprintf(&b, "☹ %s\n", v.Error)
	}

	if c := v.Current; c != nil {
		fmt.Fprintf(&b, "\n%s\n%s\n", c.Title, c.Date)
		fmt.Fprintf(&b, "%s  %s\n", c.Description, c.IconURL)
		fmt.Fprintf(&b, "%d°C\n", c.Temperature)
		fmt.Fprintf(&b, "Vitesse du vent : %s\n", FormatWind(c.WindSpeed))
	}

	if len(v.Forecast) > 0 {
		b.WriteString("\nPrévisions sur 5 jours\n")
		for _, f := range v.Forecast {
			fmt.Fprintf(&b, "  %s  %4d°C  %s  %s\n", f.Date, f.Temperature, f.Description, f.IconURL)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
