package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"weather-widget/render"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of a running `weather-widget serve`")
	city := flag.String("city", "Paris", "city to look up and save as a favorite")
	flag.Parse()

	fmt.Println("Weather Widget API Client Example")
	fmt.Println("=================================")

	client := &http.Client{Timeout: 15 * time.Second}

	// Save the city as a favorite
	fmt.Printf("\nAdding %s to favorites...\n", *city)
	body, _ := json.Marshal(map[string]string{"city": *city})
	favResp, err := client.Post(*baseURL+"/api/favorites", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error adding favorite: %v\n", err)
		os.Exit(1)
	}
	defer favResp.Body.Close()

	var favorites struct {
		Favorites []string `json:"favorites"`
	}
	if err := json.NewDecoder(favResp.Body).Decode(&favorites); err != nil {
		fmt.Printf("Error decoding favorites: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Favorites: %v\n", favorites.Favorites)

	// Look up the weather
	fmt.Printf("\nFetching weather data for %s...\n", *city)
	weatherResp, err := client.Get(*baseURL + "/api/weather?city=" + url.QueryEscape(*city))
	if err != nil {
		fmt.Printf("Error fetching weather: %v\n", err)
		os.Exit(1)
	}
	defer weatherResp.Body.Close()

	var view render.View
	if err := json.NewDecoder(weatherResp.Body).Decode(&view); err != nil {
		fmt.Printf("Error decoding weather: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	if err := render.WriteText(os.Stdout, view); err != nil {
		fmt.Printf("Error printing view: %v\n", err)
		os.Exit(1)
	}
}
