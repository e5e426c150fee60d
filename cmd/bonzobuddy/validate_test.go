package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VindiceCode/bonzobuddy/config"
	"github.com/VindiceCode/bonzobuddy/record"
	"github.com/VindiceCode/bonzobuddy/schema"
)

func suiteWithUsers(records, users int) *config.Suite {
	suite := &config.Suite{TestRecords: records}
	for i := 1; i <= users; i++ {
		suite.TestUsers = append(suite.TestUsers, record.User{
			Name:   fmt.Sprintf("User %d", i),
			Email:  fmt.Sprintf("u%d@example.test", i),
			UserID: 100 + i,
			TeamID: 7,
		})
	}
	return suite
}

func TestExpectedPerUser(t *testing.T) {
	t.Run("success - matches generated counts when remainder spans users", func(t *testing.T) {
		suite := suiteWithUsers(11, 3)

		factory, err := record.NewFactory(record.FactoryConfig{
			IntegrationType: "hubspot",
			TotalRecords:    suite.TestRecords,
			Users:           suite.TestUsers,
			Schema: &schema.Schema{Fields: schema.Properties{
				{Name: "email", Node: schema.DynamicNode("string", schema.Email)},
			}},
		})
		require.NoError(t, err)

		records, err := factory.Generate("run")
		require.NoError(t, err)

		assert.Equal(t, record.CountByUser(records), expectedPerUser(suite))
	})

	t.Run("success - exact split with no remainder", func(t *testing.T) {
		expected := expectedPerUser(suiteWithUsers(6, 3))

		assert.Equal(t, map[string]int{
			"u1@example.test": 2,
			"u2@example.test": 2,
			"u3@example.test": 2,
		}, expected)
	})

	t.Run("success - empty user list yields empty map", func(t *testing.T) {
		assert.Empty(t, expectedPerUser(&config.Suite{TestRecords: 5}))
	})
}
