// Command seed populates a running logbook server with randomized but
// plausible vehicles and maintenance histories, for demos and manual
// testing.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-logbook/internal/models"
)

var fleet = []struct {
	Make   string
	Models []string
}{
	{"Toyota", []string{"Corolla", "Camry", "RAV4", "Hilux"}},
	{"Ford", []string{"Focus", "Fiesta", "F-150", "Transit"}},
	{"Volkswagen", []string{"Golf", "Passat", "Polo", "Tiguan"}},
	{"Honda", []string{"Civic", "Accord", "CR-V"}},
	{"Hyundai", []string{"i30", "Tucson", "Elantra"}},
	{"Renault", []string{"Clio", "Megane", "Kangoo"}},
}

var serviceTypes = []string{
	"oil change", "tire rotation", "brake service",
	"battery service", "inspection", "air filter replacement",
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *client) post(path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *client) login(username, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	err := c.post("/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

func randomVehicle() models.VehicleInput {
	entry := fleet[rand.Intn(len(fleet))]
	return models.VehicleInput{
		Make:    entry.Make,
		Model:   entry.Models[rand.Intn(len(entry.Models))],
		Year:    time.Now().Year() - rand.Intn(20),
		Mileage: float64(rand.Intn(250_000)),
	}
}

func randomMaintenance(vehicleID string) models.MaintenanceInput {
	daysAgo := rand.Intn(3 * 365)
	return models.MaintenanceInput{
		VehicleID:   vehicleID,
		Date:        time.Now().AddDate(0, 0, -daysAgo).Format("2006-01-02"),
		ServiceType: serviceTypes[rand.Intn(len(serviceTypes))],
		Description: "seeded service entry",
		Cost:        float64(rand.Intn(150_000)) / 100,
	}
}

func main() {
	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	count := 10
	if v := os.Getenv("SEED_VEHICLES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			count = parsed
		}
	}
	username := os.Getenv("AUTH_USERNAME")
	if username == "" {
		username = "operator"
	}
	password := os.Getenv("AUTH_PASSWORD")
	if password == "" {
		password = "changeme"
	}

	c := &client{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
	if err := c.login(username, password); err != nil {
		log.WithError(err).Fatal("login failed")
	}

	for i := 0; i < count; i++ {
		var vehicle models.Vehicle
		if err := c.post("/api/vehicles", randomVehicle(), &vehicle); err != nil {
			log.WithError(err).Error("failed to seed vehicle")
			continue
		}

		services := rand.Intn(6)
		for j := 0; j < services; j++ {
			if err := c.post("/api/maintenance", randomMaintenance(vehicle.ID), nil); err != nil {
				log.WithError(err).Error("failed to seed maintenance record")
			}
		}
		log.WithFields(log.Fields{
			"make":     vehicle.Make,
			"model":    vehicle.Model,
			"services": services,
		}).Info("seeded vehicle")
	}
}
