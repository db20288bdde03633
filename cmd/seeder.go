package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/jamlabs/reimbursement-service/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			if _, err := db.Exec("DELETE FROM reimbursements"); err != nil {
				log.Fatalf("failed to clear reimbursements: %v", err)
			}
			if _, err := db.Exec("DELETE FROM users"); err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		seedUsers := []struct {
			Name     string
			Email    string
			Role     user.Role
			Password string
		}{
			{"Maya Manager", "maya@mail.com", user.RoleManager, "password"},
			{"Evan Employee", "evan@mail.com", user.RoleEmployee, "password"},
		}

		for _, su := range seedUsers {
			var exists int
			row := db.QueryRow("SELECT 1 FROM users WHERE email = $1", su.Email)
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", su.Email)
				continue
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("failed to hash password for %s: %v", su.Email, err)
			}

			apiKey, err := user.GenerateAPIKey()
			if err != nil {
				log.Fatalf("failed to issue api key for %s: %v", su.Email, err)
			}

			_, err = db.Exec(
				"INSERT INTO users (name, email, password_hash, user_type, notify, api_key, created_at, updated_at) VALUES ($1, $2, $3, $4, true, $5, now(), now())",
				su.Name, su.Email, string(hash), string(su.Role), apiKey)
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", su.Email, err)
			}

			// the key is printed once and never retrievable again
			fmt.Printf("Seeded %s user %s with API key: %s\n", su.Role, su.Email, apiKey)
		}

		fmt.Println("Seeding complete")
	},
}
