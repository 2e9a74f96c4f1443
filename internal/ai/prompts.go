package ai

const summarySystemPrompt = "You are an expert in resume writing. Your task is to enhance the given professional summary of a resume. " +
	"The summary should be 1-2 sentences also highlighting key skills, experience, and career objectives. " +
	"Make it compelling and ATS-friendly, and only return text no options or anything else."

const jobDescriptionSystemPrompt = "You are an expert in resume writing. Your task is to enhance the job description of a resume. " +
	"The job description should be 1-2 sentences also highlighting key responsibilities and achievements. " +
	"Use action verbs and quantifiable results where possible. " +
	"Make it compelling and ATS-friendly, and only return text no options or anything else."

const extractionSystemPrompt = "You are an expert AI agent to extract data from resume. " +
	"Extract all information from the resume text and return it as valid JSON only, with no additional text before or after."

// extractionUserPrompt uses the internal field names so the parsed object can
// be merged into a stored resume without renaming.
const extractionUserPrompt = `Extract data from the following resume text and return as JSON in this exact format:
{
  "professionalSummary": "extracted summary text here or empty string",
  "skills": ["skill1", "skill2", "skill3"],
  "personal_info": {
    "image": "",
    "full_name": "extracted full name",
    "profession": "extracted profession",
    "email": "extracted email",
    "phone": "extracted phone",
    "location": "extracted location",
    "linkedin": "extracted linkedin url or empty string",
    "website": "extracted website url or empty string"
  },
  "experience": [
    {
      "company": "company name",
      "position": "job title",
      "start_date": "start date",
      "end_date": "end date or empty if current",
      "description": "job description",
      "is_current": false
    }
  ],
  "projects": [
    {
      "name": "project name",
      "type": "project type",
      "description": "project description"
    }
  ],
  "education": [
    {
      "institution": "school name",
      "degree": "degree type",
      "field": "field of study",
      "graduation_date": "graduation date",
      "gpa": "gpa or empty string"
    }
  ]
}

Resume text:
`
