package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	proconapi "github.com/JonasBM/procon-itajai-simplificado-api"
	"github.com/JonasBM/procon-itajai-simplificado-api/cmd/proconapi/config"
	"github.com/JonasBM/procon-itajai-simplificado-api/storage"
	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

var rootCmd = &cobra.Command{
	Use:   "proconcli",
	Short: "proconcli can help you manage your procon api server",
	Long:  "proconcli can help you manage your procon api server",
}

var configFile string
var store *storage.Storage

func loadConfig() error {
	config.Load(configFile)
	log.Println("Loaded Config")
	c := config.Get()

	var err error
	store, err = config.LoadStorage(c.Storage, c.Users)
	if err != nil {
		log.Fatal(err)
	}
	return nil
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "create a user account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		staff, _ := cmd.Flags().GetBool("staff")
		super, _ := cmd.Flags().GetBool("superuser")
		u, err := store.UsersStorage().Create(
			model.AddUser{
				Username:    args[0],
				Password:    &args[1],
				IsStaff:     &staff,
				IsSuperuser: &super,
			},
		)
		if err != nil {
			return err
		}
		fmt.Printf("created user %s (id %d)\n", u.Username, u.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "list user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		users, err := store.UsersStorage().List(true)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%d\t%s\t%s %s\tstaff=%t active=%t\n", u.ID, u.Username, u.FirstName, u.LastName, u.IsStaff, u.IsActive)
		}
		return nil
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username> <old-password> <new-password>",
	Short: "change a user's password",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		u, err := store.UsersStorage().GetByUsername(args[0])
		if err != nil {
			return err
		}
		return store.UsersStorage().ChangePassword(u.ID, args[1], args[2])
	},
}

var importCmd = &cobra.Command{
	Use:   "import <workbook.xlsx>",
	Short: "import cases from a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		api := proconapi.NewProconAPI(config.Get().Server, store.Backends(), store.Blobs())
		report, err := api.ImportCases(f)
		if err != nil {
			return err
		}
		fmt.Printf("created=%d skipped=%d types_created=%d\n", report.Created, report.Skipped, report.TypesCreated)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <workbook.xlsx>",
	Short: "export all cases to a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		api := proconapi.NewProconAPI(config.Get().Server, store.Backends(), store.Blobs())
		return api.ExportCases(f)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "the config file to use")
	userAddCmd.Flags().Bool("staff", false, "grant staff rights")
	userAddCmd.Flags().Bool("superuser", false, "grant superuser rights")
	userCmd.AddCommand(userAddCmd, userListCmd, userPasswdCmd)
	rootCmd.AddCommand(userCmd, importCmd, exportCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
