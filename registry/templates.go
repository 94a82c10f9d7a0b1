package registry

import "github.com/yogabrata/formation/model"

// RegisterBuiltIn loads the standard formation templates. An error here is a
// startup configuration defect.
func RegisterBuiltIn(r *Registry) error {
	if err := r.Register("llc", llcTemplate()); err != nil {
		return err
	}
	if err := r.Register("corporation", corporationTemplate()); err != nil {
		return err
	}
	return nil
}

func llcTemplate() []model.StepTemplate {
	return []model.StepTemplate{
		{
			StepId:           "analyze_requirements",
			Name:             "Analyze Business Requirements",
			Description:      "Analyze founder information and determine optimal business structure",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO, model.ROLE_FOUNDER},
			Dependencies:     []string{},
			EstimatedMinutes: 15,
			Sources:          []string{"wa_sos", "legal_us"},
		},
		{
			StepId:           "name_availability",
			Name:             "Check Name Availability",
			Description:      "Verify business name availability across state and federal databases",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO},
			Dependencies:     []string{"analyze_requirements"},
			EstimatedMinutes: 10,
			Sources:          []string{"wa_sos"},
			RequiredSource:   "wa_sos",
		},
		{
			StepId:           "prepare_articles",
			Name:             "Prepare Articles of Organization",
			Description:      "Generate and prepare Articles of Organization for filing",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO},
			Dependencies:     []string{"name_availability"},
			EstimatedMinutes: 20,
		},
		{
			StepId:           "file_state_registration",
			Name:             "File State Registration",
			Description:      "Submit registration documents to Secretary of State",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO},
			Dependencies:     []string{"prepare_articles"},
			EstimatedMinutes: 30,
			Sources:          []string{"wa_sos", "wa_dor"},
		},
		{
			StepId:           "obtain_ein",
			Name:             "Obtain EIN",
			Description:      "Apply for Employer Identification Number from IRS",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"file_state_registration"},
			EstimatedMinutes: 25,
		},
		{
			StepId:           "setup_business_banking",
			Name:             "Setup Business Banking",
			Description:      "Establish business banking relationship and accounts",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"obtain_ein"},
			EstimatedMinutes: 45,
		},
		{
			StepId:           "register_state_taxes",
			Name:             "Register for State Taxes",
			Description:      "Register with state revenue department for tax obligations",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"file_state_registration"},
			EstimatedMinutes: 20,
			Sources:          []string{"wa_dor"},
			RequiredSource:   "wa_dor",
		},
		{
			StepId:           "setup_payroll",
			Name:             "Setup Payroll System",
			Description:      "Configure payroll and HR systems for employee management",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"obtain_ein"},
			EstimatedMinutes: 35,
		},
		{
			StepId:           "compliance_setup",
			Name:             "Initial Compliance Setup",
			Description:      "Establish compliance monitoring and reporting systems",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"file_state_registration"},
			EstimatedMinutes: 30,
			Sources:          []string{"legal_us"},
		},
		{
			StepId:           "generate_operating_agreement",
			Name:             "Generate Operating Agreement",
			Description:      "Create comprehensive operating agreement for the LLC",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO},
			Dependencies:     []string{"file_state_registration"},
			EstimatedMinutes: 40,
		},
	}
}

func corporationTemplate() []model.StepTemplate {
	return []model.StepTemplate{
		{
			StepId:           "analyze_requirements",
			Name:             "Analyze Corporate Requirements",
			Description:      "Analyze founder information and determine corporate structure",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO, model.ROLE_FOUNDER},
			Dependencies:     []string{},
			EstimatedMinutes: 20,
			Sources:          []string{"wa_sos", "legal_us"},
		},
		{
			StepId:           "name_availability",
			Name:             "Check Name Availability",
			Description:      "Verify corporate name availability across state and federal databases",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO},
			Dependencies:     []string{"analyze_requirements"},
			EstimatedMinutes: 10,
			Sources:          []string{"wa_sos"},
			RequiredSource:   "wa_sos",
		},
		{
			StepId:           "prepare_articles",
			Name:             "Prepare Articles of Incorporation",
			Description:      "Generate and prepare Articles of Incorporation for filing",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO},
			Dependencies:     []string{"name_availability"},
			EstimatedMinutes: 25,
		},
		{
			StepId:           "draft_bylaws",
			Name:             "Draft Corporate Bylaws",
			Description:      "Draft bylaws governing board structure and corporate procedure",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO},
			Dependencies:     []string{"prepare_articles"},
			EstimatedMinutes: 30,
		},
		{
			StepId:           "file_state_registration",
			Name:             "File State Registration",
			Description:      "Submit incorporation documents to Secretary of State",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO},
			Dependencies:     []string{"prepare_articles"},
			EstimatedMinutes: 30,
			Sources:          []string{"wa_sos", "wa_dor"},
		},
		{
			StepId:           "appoint_directors",
			Name:             "Appoint Initial Directors",
			Description:      "Record the initial board of directors and officer appointments",
			AssignedRoles:    []model.FounderRole{model.ROLE_CEO},
			Dependencies:     []string{"file_state_registration", "draft_bylaws"},
			EstimatedMinutes: 15,
		},
		{
			StepId:           "issue_stock",
			Name:             "Issue Founder Stock",
			Description:      "Authorize and issue initial stock to founders",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"appoint_directors"},
			EstimatedMinutes: 25,
		},
		{
			StepId:           "obtain_ein",
			Name:             "Obtain EIN",
			Description:      "Apply for Employer Identification Number from IRS",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"file_state_registration"},
			EstimatedMinutes: 25,
		},
		{
			StepId:           "register_state_taxes",
			Name:             "Register for State Taxes",
			Description:      "Register with state revenue department for tax obligations",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"file_state_registration"},
			EstimatedMinutes: 20,
			Sources:          []string{"wa_dor"},
			RequiredSource:   "wa_dor",
		},
		{
			StepId:           "setup_business_banking",
			Name:             "Setup Business Banking",
			Description:      "Establish business banking relationship and accounts",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"obtain_ein"},
			EstimatedMinutes: 45,
		},
		{
			StepId:           "compliance_setup",
			Name:             "Initial Compliance Setup",
			Description:      "Establish compliance monitoring and reporting systems",
			AssignedRoles:    []model.FounderRole{model.ROLE_CFO},
			Dependencies:     []string{"file_state_registration"},
			EstimatedMinutes: 30,
			Sources:          []string{"legal_us"},
		},
	}
}
